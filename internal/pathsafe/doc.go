// Package pathsafe validates user-supplied relative paths against a root
// directory, rejecting traversal attempts like ../../etc/passwd.
package pathsafe
