// Package htmldoc is an in-memory query engine over static HTML documents.
//
// It implements ports.Engine with CSS selectors (via goquery), so arbor
// trees can be exercised without a browser: visit a page, narrow it with
// composed locators, act on form controls and assert on the result.
// Every command and log span is appended to an ordered journal.
package htmldoc
