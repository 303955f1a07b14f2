package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func testCapture() Capture {
	return Capture{
		Direction: Response,
		URL:       "http://localhost/_blazor?id=abc",
		Raw:       []byte{0x02, 0x91, 0x06},
		JSON:      []byte("[{\n   \"MessageType\": 6\n}]"),
		Time:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDiskStorePut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures")
	store, err := NewDiskStore(dir)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	c := testCapture()
	id, err := store.Put(context.Background(), c)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(id, "20240501T120000") {
		t.Errorf("id = %q, want capture-time prefix", id)
	}

	raw, err := os.ReadFile(filepath.Join(dir, id+".bin"))
	if err != nil {
		t.Fatalf("read .bin: %v", err)
	}
	if string(raw) != string(c.Raw) {
		t.Errorf(".bin = %x, want %x", raw, c.Raw)
	}
	rendered, err := os.ReadFile(filepath.Join(dir, id+".json"))
	if err != nil {
		t.Fatalf("read .json: %v", err)
	}
	if string(rendered) != string(c.JSON) {
		t.Errorf(".json = %s, want %s", rendered, c.JSON)
	}

	metaBytes, err := os.ReadFile(filepath.Join(dir, id+".meta.json"))
	if err != nil {
		t.Fatalf("read .meta.json: %v", err)
	}
	var meta Capture
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		t.Fatalf("Unmarshal meta: %v", err)
	}
	if meta.Direction != Response || meta.URL != c.URL {
		t.Errorf("meta = %+v, want direction and url preserved", meta)
	}
}

func TestDiskStoreCanceledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, testCapture()); !errors.Is(err, context.Canceled) {
		t.Errorf("Put error = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	inputs  []*s3.PutObjectInput
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[*in.Bucket+"/"+*in.Key] = body
	f.inputs = append(f.inputs, in)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "captures", "btp")
	c := testCapture()

	id, err := store.Put(context.Background(), c)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := client.objects["captures/btp/"+id+".bin"]; string(got) != string(c.Raw) {
		t.Errorf(".bin object = %x, want %x", got, c.Raw)
	}
	if got := client.objects["captures/btp/"+id+".json"]; string(got) != string(c.JSON) {
		t.Errorf(".json object = %s, want %s", got, c.JSON)
	}
	if len(client.inputs) != 2 {
		t.Fatalf("PutObject calls = %d, want 2", len(client.inputs))
	}
	if got := client.inputs[0].Metadata["direction"]; got != "response" {
		t.Errorf("direction metadata = %q, want response", got)
	}
	if got := *client.inputs[1].ContentType; got != "application/json" {
		t.Errorf("json content type = %q, want application/json", got)
	}
}

func TestS3StorePutError(t *testing.T) {
	backend := errors.New("access denied")
	store := NewS3Store(&fakeS3{err: backend}, "captures", "")
	_, err := store.Put(context.Background(), testCapture())
	if !errors.Is(err, backend) {
		t.Fatalf("Put error = %v, want wrapped backend error", err)
	}
	if !strings.Contains(err.Error(), "s3://captures/") {
		t.Errorf("error %q does not name the object", err)
	}
}

type countingStore struct {
	n int
}

func (s *countingStore) Put(ctx context.Context, c Capture) (string, error) {
	s.n++
	return "id", nil
}

func TestLimited(t *testing.T) {
	inner := &countingStore{}
	store := NewLimited(inner, 0.001, 2)

	for i := 0; i < 2; i++ {
		if _, err := store.Put(context.Background(), testCapture()); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	if _, err := store.Put(context.Background(), testCapture()); !errors.Is(err, ErrRateLimited) {
		t.Errorf("Put over budget = %v, want ErrRateLimited", err)
	}
	if inner.n != 2 {
		t.Errorf("inner puts = %d, want 2", inner.n)
	}
}

func TestLimitedUnlimited(t *testing.T) {
	inner := &countingStore{}
	store := NewLimited(inner, 0, 0)
	for i := 0; i < 50; i++ {
		if _, err := store.Put(context.Background(), testCapture()); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	if inner.n != 50 {
		t.Errorf("inner puts = %d, want 50", inner.n)
	}
}

func TestNop(t *testing.T) {
	id, err := Nop.Put(context.Background(), testCapture())
	if err != nil || id != "" {
		t.Errorf("Nop.Put = (%q, %v), want (\"\", nil)", id, err)
	}
}
