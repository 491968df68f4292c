// Package preflight validates the runtime environment before the workflow
// starts: directory permissions, disk space, the Hugging Face token, and
// the external binaries each enabled feature needs.
package preflight
