// Command scribe watches a directory for audio recordings and turns them
// into speaker-labeled Markdown and PDF transcripts.
package main
