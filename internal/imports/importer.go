package imports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/filex"
	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

// ErrUnsupportedFile is returned for files that are not plain text or Markdown.
var ErrUnsupportedFile = errors.New("unsupported file type")

var supportedExt = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Supported reports whether path has an importable extension.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

type meta struct {
	Title string `yaml:"title" json:"title" toml:"title"`
}

// Importer creates documents from files and writes them back out.
type Importer struct {
	store store.Store
	log   logging.Logger
}

func NewImporter(st store.Store, log logging.Logger) *Importer {
	if log == nil {
		log = logging.Nop()
	}
	return &Importer{store: st, log: log}
}

// ImportFile creates a document from the file at path. Front matter, when
// present, is stripped from the body and its title wins over the file name.
func (i *Importer) ImportFile(ctx context.Context, path string, folderID *string) (*models.CreateResult, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	title, body, err := parse(source)
	if err != nil {
		return nil, fmt.Errorf("front matter %s: %w", path, err)
	}
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	res, err := i.store.CreateDocument(ctx, title, body, folderID)
	if err != nil {
		return nil, err
	}
	i.log.Info(ctx, "file imported", "path", path, "document_id", res.DocumentID)
	return res, nil
}

func parse(source []byte) (string, string, error) {
	var m meta
	body, err := frontmatter.Parse(bytes.NewReader(source), &m)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(m.Title), string(body), nil
}

// ImportPending drains q and imports every path. Failures do not stop the
// batch; they are joined into the returned error.
func (i *Importer) ImportPending(ctx context.Context, q *Queue, folderID *string) ([]models.CreateResult, error) {
	var (
		out  []models.CreateResult
		errs []error
	)
	for _, path := range q.Drain() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := i.ImportFile(ctx, path, folderID)
		if err != nil {
			i.log.Warn(ctx, "import failed", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, *res)
	}
	return out, errors.Join(errs...)
}

// Export writes the document's draft (when includeDraft is set and one
// exists) or its latest manual version to path.
func (i *Importer) Export(ctx context.Context, documentID, path string, includeDraft bool) error {
	doc, err := i.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", documentID, common.ErrNotFound)
	}

	body, err := i.currentBody(ctx, documentID, includeDraft)
	if err != nil {
		return err
	}

	if err := filex.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return err
	}
	i.log.Info(ctx, "document exported", "document_id", documentID, "path", path)
	return nil
}

func (i *Importer) currentBody(ctx context.Context, documentID string, includeDraft bool) (string, error) {
	if includeDraft {
		d, err := i.store.GetDraft(ctx, documentID)
		if err != nil {
			return "", err
		}
		if d != nil {
			return d.Body, nil
		}
	}
	v, err := i.store.GetLatestManualVersion(ctx, documentID)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return v.Body, nil
}
