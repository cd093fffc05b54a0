// Package rollout expands a branch count into a week-by-week rollout plan.
//
// Branches are installed two at a time (a batch). Week k physically installs
// batch k while the batch installed the previous week is trained, dry-run,
// taken live, monitored and handed over. Week 1 additionally carries the HQ
// track: software installation, HQ training and the HQ dry run. One extra week
// always follows the last batch so it can be finalized.
//
// Generate is a pure function: the same input always yields an equal plan and
// the returned value is never shared with later calls.
package rollout
