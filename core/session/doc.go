// Package session keeps the editable state that surrounds a generated plan:
// the document header, per-week date ranges and the colours hidden through
// the legend. The plan itself is regenerated from the branch count and never
// mutated; annotations for weeks that disappear on regeneration are dropped.
package session
