// Package cluster creates and deletes the local kind cluster used for dry
// runs and installs Kruize Autotune into it with the project's own scripts.
package cluster
