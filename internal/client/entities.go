package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

var errNotAnObject = errors.New("JSON object expected")

// decodeEntity imports a single JSON object response. Fields the schema does
// not know are dropped.
func decodeEntity(resp *http.Response, schema *tdx.Schema, codec *tdx.DateCodec) (*tdx.Entity, error) {
	obj := resp.Object()
	if obj == nil {
		return nil, &tdx.MalformedResponseError{Raw: string(resp.Body), Err: errNotAnObject}
	}

	entity, err := tdx.ImportEntity(schema, codec, obj, false)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", schema.Name(), err)
	}

	return entity, nil
}

// decodeEntities imports a JSON array response.
func decodeEntities(resp *http.Response, schema *tdx.Schema, codec *tdx.DateCodec) ([]*tdx.Entity, error) {
	objects := resp.Objects()
	out := make([]*tdx.Entity, 0, len(objects))

	for _, obj := range objects {
		entity, err := tdx.ImportEntity(schema, codec, obj, false)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", schema.Name(), err)
		}

		out = append(out, entity)
	}

	return out, nil
}

// decodeList unmarshals a JSON array response into a slice of T.
func decodeList[T any](resp *http.Response, what string) ([]T, error) {
	var items []T

	if err := json.Unmarshal(resp.Body, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", what, err)
	}

	return items, nil
}

// entityID returns the integer ID of e.
func entityID(e *tdx.Entity) (int, error) {
	id, ok := e.ID()
	if !ok {
		return 0, fmt.Errorf("%s: %w", e.Kind(), constants.ErrMissingID)
	}

	return int(id), nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
