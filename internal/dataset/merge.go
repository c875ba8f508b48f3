package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"tagtrain/internal/logging"
)

// sentenceBoundary follows every appended file, including the last one.
const sentenceBoundary = "\n\n"

// Merger concatenates datasets under Root into synthetic merged folders.
type Merger struct {
	Root   string
	Logger *slog.Logger
}

// Merge writes {Root}/{mergedName}/{split}.tsv for every split, each the
// ordered concatenation of the sources' matching split files. Output files
// are truncated first, so merging again with the same inputs reproduces the
// same bytes. Sources lacking a split contribute nothing to it.
func (m Merger) Merge(sources []string, mergedName string) (string, error) {
	logger := logging.NewComponentLogger(m.Logger, "dataset")
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = path.Base(filepath.ToSlash(src))
	}
	logger.Info("merging datasets",
		logging.Any("datasets", names),
		logging.String("merged_name", mergedName),
		logging.String(logging.FieldEventType, "dataset_merge_started"),
	)

	mergedDir := filepath.Join(m.Root, mergedName)
	if err := os.MkdirAll(mergedDir, 0o755); err != nil {
		return "", fmt.Errorf("create merged dataset dir: %w", err)
	}

	for _, split := range Splits {
		if err := m.mergeSplit(logger, sources, mergedDir, split); err != nil {
			return "", err
		}
	}
	return mergedDir, nil
}

func (m Merger) mergeSplit(logger *slog.Logger, sources []string, mergedDir string, split Split) error {
	outPath := filepath.Join(mergedDir, split.Suffix())
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create merged %s split: %w", split, err)
	}
	defer out.Close()

	for _, src := range sources {
		srcDir := filepath.Join(m.Root, src)
		splitPath, ok, err := FindSplit(srcDir, split)
		if err != nil {
			return err
		}
		if !ok {
			logging.WarnWithContext(logger, "dataset has no split file; skipping it for this split", "dataset_split_missing",
				logging.String("dataset", src),
				logging.String("split", string(split)),
				logging.String(logging.FieldErrorHint, "add a file ending in "+split.Suffix()+" if the split is expected"),
				logging.String(logging.FieldImpact, "merged split omits this dataset"),
			)
			continue
		}
		if err := appendFile(out, splitPath); err != nil {
			return fmt.Errorf("merge %s into %s: %w", splitPath, outPath, err)
		}
	}
	return out.Close()
}

func appendFile(dst io.Writer, srcPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()
	if _, err := io.Copy(dst, in); err != nil {
		return err
	}
	_, err = io.WriteString(dst, sentenceBoundary)
	return err
}
