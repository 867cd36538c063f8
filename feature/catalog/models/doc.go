// Package models defines the persistent catalog entities.
package models
