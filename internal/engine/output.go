package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	markdownExt     = ".md"
	maxFilenameLen  = 255
	maxFilenameStem = 250
)

var unsafeFilenameChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"|", "_", "?", "_", "*", "_", "\x00", "_",
)

// SanitizeFilename reduces a requested output name to a safe Markdown basename.
// Applying it to its own output returns the same name.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if name != "" {
		name = path.Base(name)
	}
	if name == "" || name == "/" || name == "." || name == ".." {
		return DefaultOutputFile
	}

	name = unsafeFilenameChars.Replace(name)

	if !strings.HasSuffix(name, markdownExt) {
		name += markdownExt
	}

	if len(name) > maxFilenameLen {
		stem := strings.TrimSuffix(name, markdownExt)
		name = cutAtRune(stem, maxFilenameStem) + markdownExt
	}
	return name
}

// cutAtRune returns the longest prefix of s that fits in n bytes without splitting a rune.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// RenderMarkdown builds the saved document: title, source, summary, attribution, transcript.
func RenderMarkdown(doc Document) string {
	model := doc.Model
	if model == "" {
		model = unnamedModel
	}
	return fmt.Sprintf(markdownTemplate, doc.VideoURL, doc.Summary, model, doc.Transcript)
}

// ResolveOutputPath sanitizes requested and confines the result to dir.
// dir="" means the current working directory.
func ResolveOutputPath(dir, requested string) (string, error) {
	if dir == "" {
		dir = "."
	}
	base, err := realPath(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}

	target, err := realPath(filepath.Join(base, SanitizeFilename(requested)))
	if err != nil {
		return "", fmt.Errorf("resolve output file: %w", err)
	}

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output file %q escapes %s", target, base)
	}
	return target, nil
}

// maxLinkHops bounds symlink chains followed by realPath.
const maxLinkHops = 40

// realPath returns the absolute path with symlinks evaluated. A missing
// final element is allowed so that new files can be resolved; a dangling
// symlink resolves to the path it points at.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	for range maxLinkHops {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
		if err != nil {
			return "", err
		}
		abs = filepath.Join(parent, filepath.Base(abs))

		fi, err := os.Lstat(abs)
		if errors.Is(err, fs.ErrNotExist) {
			return abs, nil
		}
		if err != nil {
			return "", err
		}
		if fi.Mode()&fs.ModeSymlink == 0 {
			return abs, nil
		}
		dest, err := os.Readlink(abs)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(parent, dest)
		}
		abs = filepath.Clean(dest)
	}
	return "", fmt.Errorf("too many links resolving %s", p)
}

// writeNoFollow writes data to target, refusing a symlink that appeared after resolution.
func writeNoFollow(target string, data []byte) error {
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("output file %q is a symlink", target)
	}
	return os.WriteFile(target, data, 0o644)
}

// SaveMarkdown writes doc under dir using a sanitized form of requested,
// overwriting any existing file. Returns the written path.
// Every failure wraps ErrSave.
func SaveMarkdown(dir, requested string, doc Document) (string, error) {
	metrics.FileSaves.Add(1)
	target, err := ResolveOutputPath(dir, requested)
	if err == nil {
		err = writeNoFollow(target, []byte(RenderMarkdown(doc)))
	}
	if err != nil {
		metrics.FileSaveErrors.Add(1)
		slog.Warn("output: save failed", slog.String("requested", requested), slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", ErrSave, err)
	}
	slog.Info("output: saved", slog.String("path", target))
	return target, nil
}
