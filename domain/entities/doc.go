// Package entities holds the domain model of schema synthesis: descriptor
// kinds and shape categories, annotations and their resolution, the format
// catalog, ordered schema fragments and validation results.
package entities
