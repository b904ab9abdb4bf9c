// Package cli is the command-line front end of the sync agent: session
// management, project and permission commands, and the upload, download
// and watch flows that drive the syncer.
package cli
