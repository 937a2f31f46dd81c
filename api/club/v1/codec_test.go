package clubv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_PlainMessages(t *testing.T) {
	id := int64(4)
	in := &UpsertClubPostRequest{ID: &id, ClubID: 9, Title: "Welcome", MembersOnly: true}

	data, err := codec{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"clubId":9,"title":"Welcome","description":"","membersOnly":true}`, string(data))

	var out UpsertClubPostRequest
	require.NoError(t, codec{}.Unmarshal(data, &out))
	assert.Equal(t, *in, out)
}

func TestCodec_ProtoMessages(t *testing.T) {
	data, err := codec{}.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	assert.Contains(t, string(data), "SERVING")

	var out healthpb.HealthCheckResponse
	require.NoError(t, codec{}.Unmarshal(data, &out))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, out.Status)
}

func TestCodec_InvalidJSON(t *testing.T) {
	var out GetClubRequest
	err := codec{}.Unmarshal([]byte("{"), &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}
