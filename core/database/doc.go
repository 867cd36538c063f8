// Package database handles database connections for the stocktake service.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that configures
// MySQL connections based on the application's configuration, with an sqlite path
// used by the test suites (in-memory databases).
//
// # Connect
//
// The generic Connect function establishes a connection to the database. Schema
// ownership lies with the features: each feature migrates its own models via
// gorm.DB.AutoMigrate at startup.
package database
