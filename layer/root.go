package layer

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const dirPerm os.FileMode = 0o755

// OutputRoot is the directory all layers of one run are written to.
// Whoever orchestrates the writers creates a single OutputRoot and hands it to every New call,
// so the directory is prepared at most once no matter how many layers share it.
type OutputRoot struct {
	fs  afero.Fs
	dir string

	once sync.Once
	abs  string
	err  error
}

// NewOutputRoot returns an OutputRoot for dir, relative to the working directory unless absolute.
// A nil fs means the OS filesystem.
func NewOutputRoot(fs afero.Fs, dir string) *OutputRoot {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &OutputRoot{fs: fs, dir: dir}
}

// Prepare resolves the absolute output directory and creates it on first use.
// Every later call returns the outcome of the first one.
func (r *OutputRoot) Prepare() (string, error) {
	r.once.Do(func() {
		r.abs, r.err = r.prepare()
	})
	return r.abs, r.err
}

func (r *OutputRoot) prepare() (string, error) {
	dir := r.dir
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", newError(KindEnvironment, "resolve working directory", "", err)
		}
		dir = filepath.Join(cwd, dir)
	}
	if err := r.fs.MkdirAll(dir, dirPerm); err != nil {
		return "", newError(KindEnvironment, "create output directory", "",
			errors.Wrapf(err, "could not create directory %s", dir))
	}
	return dir, nil
}

func (r *OutputRoot) exists(path string) (bool, error) {
	return afero.Exists(r.fs, path)
}

func (r *OutputRoot) remove(path string) error {
	err := r.fs.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
