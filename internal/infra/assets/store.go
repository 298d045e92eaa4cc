package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"certgen/internal/config"
	"certgen/internal/domain"
)

// Assets holds one request's copy of the template and font bytes.
type Assets struct {
	Template []byte
	Font     []byte
}

// Store reads the certificate template and font from local disk. Nothing is
// cached: every Load reads both files again.
type Store struct {
	TemplatePath string
	FontPath     string
}

func NewStore(cfg config.AssetsConfig) *Store {
	return &Store{TemplatePath: cfg.TemplatePath, FontPath: cfg.FontPath}
}

// Load reads both assets. A missing file yields domain.ErrMissingAsset
// naming the asset and its path.
func (s *Store) Load() (Assets, error) {
	tpl, err := readAsset("template", s.TemplatePath)
	if err != nil {
		return Assets{}, err
	}
	font, err := readAsset("font", s.FontPath)
	if err != nil {
		return Assets{}, err
	}
	return Assets{Template: tpl, Font: font}, nil
}

// Check verifies that both assets exist without reading them.
func (s *Store) Check() error {
	for _, a := range []struct{ kind, path string }{
		{"template", s.TemplatePath},
		{"font", s.FontPath},
	} {
		st, err := os.Stat(a.path)
		if err != nil {
			return assetError(a.kind, a.path, err)
		}
		if st.IsDir() {
			return fmt.Errorf("%w: %s path %s is a directory", domain.ErrMissingAsset, a.kind, a.path)
		}
	}
	return nil
}

func readAsset(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, assetError(kind, path, err)
	}
	return data, nil
}

func assetError(kind, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s file not found at %s", domain.ErrMissingAsset, kind, path)
	}
	return fmt.Errorf("read %s %s: %w", kind, path, err)
}
