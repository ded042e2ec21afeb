// Package files manages the per-user data tree: saving converted
// documents and uploaded statements, listing recent output, resolving
// download requests without letting callers escape their own directory,
// and zipping a user's tree for backup.
//
// Layout under the configured data directory:
//
//	users/
//	  <username>/
//	    uploads/       archived source statements
//	    converted/     generated tax documents
//	    preferences.json
package files
