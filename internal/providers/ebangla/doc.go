// Package ebangla implements providers.Scraper for ebanglalibrary.com, a
// WordPress/LearnDash site. The listing page carries the book metadata in a
// LearnDash tab and either links to one page per chapter ("topics") or, on
// newer books, embeds every chapter under its own h2 heading.
//
// The selectors used here are an unversioned contract with the site and are
// kept together in this package so a layout change touches one place.
package ebangla
