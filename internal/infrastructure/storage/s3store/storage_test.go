package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectAPIFake struct {
	objects map[string]string
	types   map[string]string
	putErr  error
}

func (f *objectAPIFake) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(raw)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *objectAPIFake) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	content, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(content))}, nil
}

func TestUploadAndOpenWithPrefix(t *testing.T) {
	api := &objectAPIFake{objects: map[string]string{}, types: map[string]string{}}
	store := newStorage(api, "compliance-docs", "/uploads/", "https://cdn.example.com")

	stored, err := store.Upload(context.Background(), "gst cert.pdf", "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(stored.URL, "https://cdn.example.com/uploads/") || !strings.HasPrefix(stored.Key, "uploads/") {
		t.Fatalf("unexpected stored file %+v", stored)
	}
	if api.types[stored.Key] != "application/pdf" {
		t.Fatalf("expected content type recorded")
	}

	rc, err := store.Open(context.Background(), stored.URL)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if string(raw) != "%PDF" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestUploadPropagatesPutError(t *testing.T) {
	api := &objectAPIFake{objects: map[string]string{}, types: map[string]string{}, putErr: errors.New("AccessDenied")}
	store := newStorage(api, "b", "", "https://b.s3.ap-south-1.amazonaws.com")

	if _, err := store.Upload(context.Background(), "x.pdf", "", strings.NewReader("x")); err == nil || !strings.Contains(err.Error(), "AccessDenied") {
		t.Fatalf("expected put error, got %v", err)
	}
}
