// Package backend describes discovered backend modules: the capability they
// provide, their lifecycle state and the catalog a directory scan produces.
package backend
