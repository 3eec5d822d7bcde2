// Package report turns a filled template and its photos into an ordered plan of fixed-size
// pages. Everything here is pure: the same inputs always produce the same descriptors and
// the same file name.
package report
