package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/utils/unittest"
)

func TestCommand(t *testing.T) {
	var buf bytes.Buffer
	log := unittest.LoggerWithWriterAndLevel(&buf, zerolog.DebugLevel)

	key, err := ccr.NewCommandKey("context-id", ccr.ContextPartialDecryptPCC, "correlation-id", 4)
	require.NoError(t, err)
	cmdLog := Command(log, key)
	cmdLog.Info().Msg("test")

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "context-id", fields["context_id"])
	assert.Equal(t, ccr.ContextPartialDecryptPCC, fields["context"])
	assert.Equal(t, "correlation-id", fields["correlation_id"])
	assert.Equal(t, "4", fields["node_id"])
}

func TestCard(t *testing.T) {
	var buf bytes.Buffer
	log := unittest.LoggerWithWriterAndLevel(&buf, zerolog.DebugLevel)

	ee, vcs, vc := unittest.IdentifierFixture(), unittest.IdentifierFixture(), unittest.IdentifierFixture()
	ctx, err := ccr.NewEncryptionContext(1, ee, vcs, unittest.SmallGroupFixture(t))
	require.NoError(t, err)
	cardLog := Card(log, ctx, vc)
	cardLog.Info().Msg("test")

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, ee, fields["election_event_id"])
	assert.Equal(t, vcs, fields["verification_card_set_id"])
	assert.Equal(t, vc, fields["verification_card_id"])
	assert.Equal(t, "1", fields["node_id"])
}
