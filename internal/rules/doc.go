// Package rules derives classification tags from entity state.
//
// A pass evaluates a fixed, ordered table of rules against one snapshot and
// produces a complete Classification: every tag is recomputed, so tags
// whose condition no longer holds disappear. Rules later in the table may
// read tags assigned earlier in the same pass (discount_eligible reads
// premium and active). Classify is a pure function of the snapshot.
package rules
