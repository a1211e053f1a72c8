// Package smoke runs the shared resource features against a live cluster.
package smoke
