package camera

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

var errFrameEmpty = errors.New("camera returned an empty frame")

type gocvProvider struct{}

func (gocvProvider) Available() bool { return true }

func (gocvProvider) Reason() string { return "" }

func (gocvProvider) Open(settings Settings) (Device, error) {
	var source interface{} = settings.Device
	if index, err := strconv.Atoi(settings.Device); err == nil {
		source = index
	}
	capture, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("open capture device %q: %w", settings.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %q did not open", ErrDeviceUnavailable, settings.Device)
	}
	capture.Set(gocv.VideoCaptureFrameWidth, float64(settings.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(settings.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(settings.Framerate))
	return &gocvDevice{
		capture: capture,
		mat:     gocv.NewMat(),
		quality: settings.JPEGQuality,
	}, nil
}

// gocvDevice reads frames through OpenCV. The producer goroutine is the
// only caller of ReadJPEG, so the reusable mat needs no locking; Close
// is guarded because producer shutdown and fault handling may race.
type gocvDevice struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	quality int

	closeOnce sync.Once
	closeErr  error
}

func (d *gocvDevice) ReadJPEG() ([]byte, error) {
	if ok := d.capture.Read(&d.mat); !ok {
		return nil, errors.New("read frame from capture device")
	}
	if d.mat.Empty() {
		return nil, errFrameEmpty
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, d.mat, []int{gocv.IMWriteJpegQuality, d.quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	// The buffer is backed by native memory freed on Close, so hand
	// out a copy.
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

func (d *gocvDevice) Close() error {
	d.closeOnce.Do(func() {
		d.mat.Close()
		d.closeErr = d.capture.Close()
	})
	return d.closeErr
}
