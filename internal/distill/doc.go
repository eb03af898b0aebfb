// Package distill turns raw HTML into extraction evidence: the visible
// text of the page, its title, embedded structured-data blocks, and the
// outgoing links with their anchor text.
//
// Distillation removes everything a reader does not see or does not care
// about (scripts, styles, navigation, footers, cookie banners) before
// concatenating the remaining text in document order. Structured-data
// blocks are parsed separately as data; a malformed block is simply
// absent, never an error.
//
// Design decision: We parse with goquery rather than walking
// x/net/html nodes by hand because boilerplate removal is selector
// shaped ("drop every element whose id or class mentions cookie"), and
// goquery's jQuery-style API keeps that logic declarative. goquery's
// underlying parser tolerates malformed markup, so bad HTML degrades to
// partial text rather than failure.
package distill
