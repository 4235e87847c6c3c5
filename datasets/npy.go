package datasets

import (
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// LoadNpy reads a 2-D float64 array from a NumPy .npy file. A 1-D array is
// read as a column vector.
func LoadNpy(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read npy header of %s", path)
	}

	if len(r.Header.Descr.Shape) == 1 {
		data := make([]float64, r.Header.Descr.Shape[0])
		if err := r.Read(&data); err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		if len(data) == 0 {
			return nil, errors.NewInvalidDatasetError("LoadNpy", path+" is empty")
		}
		return mat.NewDense(len(data), 1, data), nil
	}

	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return m, nil
}

// SaveNpy writes m to path in the NumPy .npy format.
func SaveNpy(path string, m mat.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := npyio.Write(f, mat.DenseCopyOf(m)); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
