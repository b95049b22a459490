package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// mockClient is an in-memory API. Failures can be injected per operation.
type mockClient struct {
	mu       sync.Mutex
	objects  map[string][]byte
	uploads  map[string]map[int32][]byte
	uploadID int

	putObjectCalls int
	createCalls    int
	uploadCalls    int
	abortCalls     int
	abortCtxErr    error

	// failUploadOnCall makes the Nth UploadPart call fail; 0 disables.
	failUploadOnCall int
	completeErr      error
	abortErr         error
}

func newMockClient() *mockClient {
	return &mockClient{
		objects: make(map[string][]byte),
		uploads: make(map[string]map[int32][]byte),
	}
}

func (m *mockClient) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

func (m *mockClient) pendingUploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

func (m *mockClient) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.putObjectCalls++

	key := aws.ToString(params.Key)
	if aws.ToString(params.IfNoneMatch) == "*" {
		if _, ok := m.objects[key]; ok {
			return nil, &apiError{code: "PreconditionFailed"}
		}
	}
	m.objects[key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.object(aws.ToString(params.Key))
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockClient) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := m.object(aws.ToString(params.Key)); !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockClient) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	delete(m.objects, aws.ToString(params.Key))
	m.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockClient) CreateMultipartUpload(_ context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.uploadID++
	id := fmt.Sprintf("upload-%d", m.uploadID)
	m.uploads[id] = make(map[int32][]byte)
	return &s3.CreateMultipartUploadOutput{Key: params.Key, UploadId: aws.String(id)}, nil
}

func (m *mockClient) UploadPart(_ context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls++
	if m.failUploadOnCall > 0 && m.uploadCalls >= m.failUploadOnCall {
		return nil, &apiError{code: "InternalError", message: "simulated upload part failure"}
	}

	parts, ok := m.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, &apiError{code: "NoSuchUpload"}
	}
	partNum := aws.ToInt32(params.PartNumber)
	parts[partNum] = data
	return &s3.UploadPartOutput{ETag: aws.String(fmt.Sprintf("%q", fmt.Sprint(partNum)))}, nil
}

func (m *mockClient) CompleteMultipartUpload(_ context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.completeErr != nil {
		return nil, m.completeErr
	}
	key := aws.ToString(params.Key)
	if aws.ToString(params.IfNoneMatch) == "*" {
		if _, ok := m.objects[key]; ok {
			return nil, &apiError{code: "PreconditionFailed"}
		}
	}

	id := aws.ToString(params.UploadId)
	parts, ok := m.uploads[id]
	if !ok {
		return nil, &apiError{code: "NoSuchUpload"}
	}
	var assembled []byte
	for i := int32(1); i <= int32(len(parts)); i++ {
		assembled = append(assembled, parts[i]...)
	}
	m.objects[key] = assembled
	delete(m.uploads, id)
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortCalls++
	m.abortCtxErr = ctx.Err()
	delete(m.uploads, aws.ToString(params.UploadId))
	if m.abortErr != nil {
		return nil, m.abortErr
	}
	return &s3.AbortMultipartUploadOutput{}, nil
}

// apiError implements smithy.APIError.
type apiError struct {
	code    string
	message string
}

func (e *apiError) Error() string                 { return e.code + ": " + e.message }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.message }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }

var _ API = (*mockClient)(nil)
