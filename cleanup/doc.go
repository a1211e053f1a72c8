// Package cleanup removes what smoke scenarios left behind on a cluster.
package cleanup
