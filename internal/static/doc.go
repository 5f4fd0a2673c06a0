// Package static provides the assets the development server adds to the
// documents it serves.
package static
