// Package kmeans implements the per-tick clustering step of the simulation:
// sample and centroid generation, nearest-centroid assignment, and the
// centroid update with its idle reseed and parking policy.
//
// All randomness goes through an explicit Random so runs are reproducible.
package kmeans
