// Package partition provides measurements over node labelings: grouping,
// normalized mutual information between two labelings, and modularity of a
// labeling on a graph.
//
// A labeling is a []int aligned with a graph's node order. Negative labels
// mark nodes that belong to no community; they are treated as singletons by
// [Modularity] and as one extra cluster by [NMI].
//
// NMI here compares two partitions produced by the detector itself (the
// FluidC+ restart loop uses it to detect unstable seeds). Scoring against
// ground-truth labels is left to external tooling.
package partition
