// Package config provides configuration structures and utilities for pagescan.
// It defines the main options for fetching, extraction, export formats, and
// batch scraping, plus the optional .pagescan site configuration file.
package config
