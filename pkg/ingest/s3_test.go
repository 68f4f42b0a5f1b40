package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/noid"
	"github.com/warptools/noidwrap/pkg/noid/noidmock"
)

// fakeS3 serves objects from memory, two keys per listing page.
type fakeS3 struct {
	objects map[string][]byte
	listErr error
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) && k > aws.ToString(in.ContinuationToken) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for i, k := range keys {
		if i == 2 {
			out.IsTruncated = true
			out.NextContinuationToken = aws.String(keys[1])
			break
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: int64(len(f.objects[k]))})
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		ContentRange:  aws.String(fmt.Sprintf("bytes 0-%d/%d", len(data)-1, len(data))),
	}, nil
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"collection/10.json":  []byte(`{"ark": "99999/fk4c", "title": "Program"}`),
		"collection/2.yaml":   []byte("ark: 99999/fk4b\ntitle: Photograph\n"),
		"collection/1.json":   []byte(`{"ark": "99999/fk4a", "title": "Letter"}`),
		"collection/index.md": []byte("# not metadata"),
		"elsewhere/9.json":    []byte(`{"ark": "99999/fk4z", "title": "Elsewhere"}`),
	}}
	src := NewS3SourceWithClient(client, S3Config{Bucket: "archive", Prefix: "collection/"})
	ctx := context.Background()

	keys, err := src.List(ctx)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, keys, qt.DeepEquals, []string{"collection/1.json", "collection/2.yaml", "collection/10.json"})

	data, err := src.Read(ctx, "collection/2.yaml")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, string(data), qt.Equals, "ark: 99999/fk4b\ntitle: Photograph\n")

	mock := noidmock.New()
	in := &Ingester{Client: noid.NewClient(mock), Mapping: mapping(t, "title=what"), IDField: "ark"}
	report, err := in.Ingest(ctx, src)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, report.Source, qt.Equals, "s3://archive/collection/")
	qt.Check(t, mock.Bound(), qt.HasLen, 3)

	_, err = src.Read(ctx, "collection/missing.json")
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeRemoteSource)

	client.listErr = errors.New("AccessDenied")
	_, err = src.List(ctx)
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeRemoteSource)
}

func TestNewS3SourceNeedsBucket(t *testing.T) {
	_, err := NewS3Source(context.Background(), S3Config{})
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeArgument)
}
