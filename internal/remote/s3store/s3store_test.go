package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"

	"github.com/marcus/dmscreen/internal/models"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestGetMissingIsNil(t *testing.T) {
	s := newStore(newFakeS3(), "b", "", time.Now)
	rec, err := s.Get(context.Background(), "u1")
	if err != nil || rec != nil {
		t.Fatalf("Get = %v, %v; want nil, nil", rec, err)
	}
}

func TestSetThenGet(t *testing.T) {
	fake := newFakeS3()
	stamp := time.Date(2025, 2, 3, 4, 5, 6, 0, time.FixedZone("X", 7200))
	s := newStore(fake, "b", "dm", func() time.Time { return stamp })

	st := models.DefaultState()
	st.Players = []models.Player{{Name: "Ana", AC: models.IntPtr(15)}}
	got, err := s.Set(context.Background(), "u1", st)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !got.Equal(stamp) || got.Location() != time.UTC {
		t.Fatalf("stamp = %v, want %v in UTC", got, stamp)
	}

	raw, ok := fake.objects["b/dm/users/u1.json.sz"]
	if !ok {
		t.Fatalf("object not written at expected key; have %v", keys(fake.objects))
	}
	if _, err := snappy.Decode(nil, raw); err != nil {
		t.Fatalf("object is not snappy encoded: %v", err)
	}

	rec, err := s.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.LastSync.Equal(stamp) || rec.Players[0].Name != "Ana" || *rec.Players[0].AC != 15 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestSetError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	s := newStore(fake, "b", "", time.Now)
	if _, err := s.Set(context.Background(), "u1", models.DefaultState()); !errors.Is(err, fake.putErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetCorruptObject(t *testing.T) {
	fake := newFakeS3()
	s := newStore(fake, "b", "", time.Now)
	fake.objects["b/"+s.Key("u1")] = []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, err := s.Get(context.Background(), "u1"); err == nil {
		t.Fatal("expected error for corrupt object")
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
