// Package translate renders English passages into the target language using
// the public Google Translate endpoint. Long passages are split on sentence
// boundaries to stay under the service's request size limit.
package translate
