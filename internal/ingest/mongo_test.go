package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// bsonDoc encodes a map the way the driver hands documents to the cursor.
func bsonDoc(t *testing.T, doc map[string]any) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	return raw
}
