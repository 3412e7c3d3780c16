// Package handlers provides pre-configured handlers for the Netflix Prize
// dataset files.
package handlers

import (
	"errors"
)

type contextKey string

// ErrShortRow is returned when a row has fewer fields than its format needs.
var ErrShortRow = errors.New("too few fields")

// Destination tables.
const (
	MovieTable  = "movie"
	RatingTable = "rating"
)

// MovieTitlesSource is the file name of the movie metadata.
const MovieTitlesSource = "movie_titles.csv"

// CombinedDataSources are the rating files in the order they are loaded.
var CombinedDataSources = []string{
	"combined_data_1.txt",
	"combined_data_2.txt",
	"combined_data_3.txt",
	"combined_data_4.txt",
}
