package enroll

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/registry"
	"github.com/kozaktomas/facereg/internal/vision"
	"github.com/kozaktomas/facereg/internal/vision/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPaths struct {
	registry      string
	modelRegistry string
	faces         string
}

func newTestPaths(t *testing.T) testPaths {
	dir := t.TempDir()
	return testPaths{
		registry:      filepath.Join(dir, "train", "id-names.csv"),
		modelRegistry: filepath.Join(dir, "train", "Recog", "Classifiers", "id-names.csv"),
		faces:         filepath.Join(dir, "train", "faces"),
	}
}

func input(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestOpenRegistryCreatesHeaderOnlyFile(t *testing.T) {
	p := newTestPaths(t)

	reg, err := OpenRegistry(p.registry)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	data, err := os.ReadFile(p.registry)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n", string(data))
}

func TestOpenRegistryRejectsMalformedFile(t *testing.T) {
	p := newTestPaths(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.registry), 0o755))
	require.NoError(t, os.WriteFile(p.registry, []byte("id,name\n1,Ada\nbad line\n2,Grace\n"), 0o644))

	reg, err := OpenRegistry(p.registry)
	require.Error(t, err)
	assert.Nil(t, reg)
	assert.True(t, errors.Is(err, registry.ErrMalformedLine))
}

func TestIdentifyNewUser(t *testing.T) {
	p := newTestPaths(t)
	reg, err := OpenRegistry(p.registry)
	require.NoError(t, err)
	store := facesample.NewStore(p.faces)
	require.NoError(t, store.EnsureRoot())

	var out bytes.Buffer
	id, err := Identify(input("42", "Ada"), &out, reg, store, p.registry, p.modelRegistry)
	require.NoError(t, err)

	assert.Equal(t, Identity{ID: 42, Name: "Ada"}, id)
	assert.Equal(t, []registry.Record{{ID: 42, Name: "Ada"}}, reg.Records())
	assert.DirExists(t, filepath.Join(p.faces, "42"))
	assert.Contains(t, out.String(), "Please Enter your name: ")

	for _, path := range []string{p.registry, p.modelRegistry} {
		saved, err := registry.Load(path)
		require.NoError(t, err)
		assert.Equal(t, []registry.Record{{ID: 42, Name: "Ada"}}, saved.Records(), path)
	}
}

func TestIdentifyReturningUser(t *testing.T) {
	p := newTestPaths(t)
	require.NoError(t, registry.New(registry.Record{ID: 7, Name: "Grace"}).Save(p.registry))
	reg, err := OpenRegistry(p.registry)
	require.NoError(t, err)
	store := facesample.NewStore(p.faces)

	var out bytes.Buffer
	id, err := Identify(input("7"), &out, reg, store, p.registry, p.modelRegistry)
	require.NoError(t, err)

	assert.Equal(t, Identity{ID: 7, Name: "Grace", Returning: true}, id)
	assert.Equal(t, 1, reg.Len())
	assert.Contains(t, out.String(), "Welcome Back Grace!!")
	assert.NotContains(t, out.String(), "Please Enter your name")
	assert.NoFileExists(t, p.modelRegistry, "returning users do not rewrite the registry")
}

func TestIdentifyErrors(t *testing.T) {
	tests := []struct {
		name string
		in   *bufio.Reader
		want error
	}{
		{"non-integer id", input("abc"), ErrInvalidID},
		{"zero id", input("0"), ErrInvalidID},
		{"negative id", input("-3"), ErrInvalidID},
		{"blank name", input("5", "   "), ErrEmptyName},
		{"no input", bufio.NewReader(strings.NewReader("")), io.ErrUnexpectedEOF},
		{"no name", bufio.NewReader(strings.NewReader("5\n")), io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPaths(t)
			reg := registry.New()
			_, err := Identify(tt.in, io.Discard, reg, facesample.NewStore(p.faces), p.registry)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestIdentifyTrimsNameAndAcceptsLastLineWithoutNewline(t *testing.T) {
	p := newTestPaths(t)
	reg := registry.New()

	id, err := Identify(bufio.NewReader(strings.NewReader("12\r\n  Grace Hopper  ")), io.Discard, reg, facesample.NewStore(p.faces), p.registry)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", id.Name)
}

func newSession(t *testing.T, cam *mock.MockCamera, det *mock.MockDetector, disp *mock.MockDisplay) (*Session, *bytes.Buffer) {
	t.Helper()
	store := facesample.NewStore(t.TempDir())
	require.NoError(t, store.CreateIdentityDir(42))
	var out bytes.Buffer
	return &Session{
		Camera:        cam,
		Detector:      det,
		Display:       disp,
		Store:         store,
		Out:           &out,
		ID:            42,
		MinBrightness: 50,
	}, &out
}

func TestSessionSavesBrightFacesOnSaveKey(t *testing.T) {
	bright := image.Rect(10, 10, 110, 110)
	dark := image.Rect(200, 200, 260, 260)
	frame := func() *mock.MockFrame {
		return mock.NewMockFrame(320, 320, 0).Fill(bright, 180)
	}

	cam := mock.NewMockCamera(frame(), frame(), frame())
	det := &mock.MockDetector{Faces: []image.Rectangle{bright, dark}}
	disp := &mock.MockDisplay{Keys: []int{vision.KeyNone, vision.KeySave, vision.KeyQuit}}
	s, out := newSession(t, cam, det, disp)

	taken, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, taken, "only the bright face is saved, only on the save key")
	assert.Equal(t, 1, s.Sequence)
	assert.Equal(t, "1 -> Photos taken!\n", out.String())
	assert.Len(t, disp.Shown, 3, "every frame is shown")
	assert.Equal(t, 3, cam.Reads)

	for i, f := range cam.Frames {
		assert.Len(t, f.Rects(), 2, "frame %d draws a box per face", i)
		assert.True(t, f.Closed, "frame %d closed", i)
	}

	fh, err := os.Open(s.Store.Path(42, 0))
	require.NoError(t, err)
	defer fh.Close()
	img, err := jpeg.Decode(fh)
	require.NoError(t, err)
	_, isGray := img.(*image.Gray)
	assert.True(t, isGray, "sample is single-channel")
	assert.Equal(t, image.Rect(0, 0, facesample.Size, facesample.Size), img.Bounds())
	assert.NoFileExists(t, s.Store.Path(42, 1))
}

func TestSessionEndsOnEmptyFrame(t *testing.T) {
	face := image.Rect(0, 0, 50, 50)
	cam := mock.NewMockCamera(mock.NewMockFrame(100, 100, 200), nil, mock.NewMockFrame(100, 100, 200))
	det := &mock.MockDetector{Faces: []image.Rectangle{face}}
	disp := &mock.MockDisplay{Keys: []int{vision.KeySave, vision.KeySave, vision.KeySave}}
	s, _ := newSession(t, cam, det, disp)

	taken, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, taken)
	assert.Equal(t, 2, cam.Reads, "no read after the empty frame")
	assert.Len(t, disp.Shown, 1)
}

func TestSessionContinuesSequence(t *testing.T) {
	face := image.Rect(0, 0, 50, 50)
	cam := mock.NewMockCamera(mock.NewMockFrame(100, 100, 200), mock.NewMockFrame(100, 100, 200))
	det := &mock.MockDetector{Faces: []image.Rectangle{face}}
	disp := &mock.MockDisplay{Keys: []int{vision.KeySave, vision.KeySave}}
	s, out := newSession(t, cam, det, disp)
	s.Sequence = 5

	taken, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, taken)
	assert.FileExists(t, s.Store.Path(42, 5))
	assert.FileExists(t, s.Store.Path(42, 6))
	assert.Equal(t, "1 -> Photos taken!\n2 -> Photos taken!\n", out.String())
}

func TestSessionReadError(t *testing.T) {
	cam := mock.NewMockCamera()
	cam.ReadError = errors.New("device unplugged")
	s, _ := newSession(t, cam, &mock.MockDetector{}, &mock.MockDisplay{})

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestSessionShowError(t *testing.T) {
	cam := mock.NewMockCamera(mock.NewMockFrame(64, 64, 90), mock.NewMockFrame(64, 64, 90))
	disp := &mock.MockDisplay{ShowError: errors.New("window destroyed")}
	s, _ := newSession(t, cam, &mock.MockDetector{}, disp)

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window destroyed")
	assert.Equal(t, 1, cam.Reads, "capture stops at the first display failure")
}

func TestSessionStopsWhenContextCancelled(t *testing.T) {
	cam := mock.NewMockCamera(mock.NewMockFrame(10, 10, 0))
	s, _ := newSession(t, cam, &mock.MockDetector{}, &mock.MockDisplay{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	taken, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, taken)
	assert.Equal(t, 0, cam.Reads)
}

func TestSessionClose(t *testing.T) {
	cam := mock.NewMockCamera()
	det := &mock.MockDetector{}
	disp := &mock.MockDisplay{}
	s, _ := newSession(t, cam, det, disp)

	require.NoError(t, s.Close())
	assert.True(t, cam.Closed)
	assert.True(t, det.Closed)
	assert.True(t, disp.Closed)
}
