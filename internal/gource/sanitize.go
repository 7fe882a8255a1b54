package gource

import (
	"regexp"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// A custom log line is `timestamp|user|type|path` with a single-character
	// type field. Group 1 captures everything through the type delimiter,
	// group 2 the path.
	pathRewriteRE = regexp.MustCompile(`(.*\|.{1}\|)(.*)`)

	dequoteRE = regexp.MustCompile("['\"`]")
)

// prefixPaths rewrites every log line so the file path sits under a
// directory named after the repository. Without this, files from different
// repositories with the same path would collide into one node in the
// rendered tree.
func prefixPaths(log []byte, repoName string) []byte {
	return pathRewriteRE.ReplaceAll(log, []byte("${1}/"+repoName+"${2}"))
}

// stripDiacritics decomposes the log to NFD, drops combining marks and
// recomposes, so accented author names collapse to their ASCII base forms.
// The transformer chain carries internal buffers, so a fresh one is built
// per call to stay safe under concurrent log generation.
func stripDiacritics(log []byte) []byte {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.Bytes(t, log)
	if err != nil {
		return log
	}
	return out
}

// dequote removes single quotes, double quotes and backticks. Gource treats
// them literally but they break the pipe-delimited merge downstream when
// they appear in usernames.
func dequote(log []byte) []byte {
	return dequoteRE.ReplaceAll(log, nil)
}

// sanitizeLog applies the full rewrite chain to a raw custom log: path
// prefixing first (the regex needs the original field layout), then
// diacritic folding, then quote removal.
func sanitizeLog(raw []byte, repoName string) []byte {
	log := prefixPaths(raw, repoName)
	log = stripDiacritics(log)
	return dequote(log)
}
