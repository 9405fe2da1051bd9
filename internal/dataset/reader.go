package dataset

import (
	"image"
	"image/color"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Channels is the number of colour values kept per pixel (alpha is dropped).
const Channels = 3

var (
	// ErrEmpty is returned when a directory holds no images.
	ErrEmpty = errors.New("dataset: no images")
	// ErrImageSize is returned for images whose bounds differ from the
	// expected shape.
	ErrImageSize = errors.New("dataset: unexpected image size")
)

// Shape is the pixel size every image in a set must have.
type Shape struct {
	Width  int
	Height int
}

// DefaultShape matches the cat/non-cat images.
var DefaultShape = Shape{Width: 64, Height: 64}

// Features returns the length of a flattened image vector.
func (s Shape) Features() int {
	return s.Width * s.Height * Channels
}

// Set is a labelled batch of images with one sample per column of X.
type Set struct {
	X     *mat.Dense
	Y     *mat.Dense
	Paths []string
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Paths)
}

// ReadSet reads every PNG in dir into a Set, labelling each file with
// LabelFor.
func ReadSet(dir string, shape Shape) (*Set, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	x, err := ReadImages(paths, shape)
	if err != nil {
		return nil, errors.Wrapf(err, "read set %s", dir)
	}
	labels := make([]float64, len(paths))
	for i, p := range paths {
		labels[i] = LabelFor(p)
	}
	return &Set{X: x, Y: mat.NewDense(1, len(paths), labels), Paths: paths}, nil
}

// ReadImages decodes the images at paths into a features×len(paths)
// matrix.
func ReadImages(paths []string, shape Shape) (*mat.Dense, error) {
	if len(paths) == 0 {
		return nil, ErrEmpty
	}
	x := mat.NewDense(shape.Features(), len(paths), nil)
	for j, p := range paths {
		pixels, err := readImage(p, shape)
		if err != nil {
			return nil, err
		}
		x.SetCol(j, pixels)
	}
	return x, nil
}

func readImage(path string, shape Shape) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	b := img.Bounds()
	if b.Dx() != shape.Width || b.Dy() != shape.Height {
		return nil, errors.Wrapf(ErrImageSize, "%s is %dx%d, want %dx%d", path, b.Dx(), b.Dy(), shape.Width, shape.Height)
	}
	return Pixels(img), nil
}

// Pixels flattens img row by row into R, G, B values in [0, 1].
func Pixels(img image.Image) []float64 {
	b := img.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy()*Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out,
				float64(c.R)/255,
				float64(c.G)/255,
				float64(c.B)/255,
			)
		}
	}
	return out
}
