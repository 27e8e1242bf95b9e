// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package legenddb

import (
	"encoding/json"

	"github.com/juju/errors"
)

// RelationDataKey is the application data key holding the JSON encoded
// credentials on a legend-db relation.
const RelationDataKey = "legend-db-connection"

// SetDatabaseCredentialsInRelationData validates creds and stores them as
// JSON in the relation data. Invalid credentials leave data untouched.
func SetDatabaseCredentialsInRelationData(data map[string]string, creds interface{}) error {
	if err := ValidateCredentials(creds); err != nil {
		return errors.Trace(err)
	}
	if dc, ok := creds.(*DatabaseCredentials); ok {
		creds = *dc
	}
	encoded, err := json.Marshal(creds)
	if err != nil {
		return errors.Annotate(err, "encoding legend database credentials")
	}
	data[RelationDataKey] = string(encoded)
	return nil
}

// GetDatabaseCredentialsFromRelationData returns the credentials stored in
// the relation data, or an empty map if there are none yet. The result is
// not validated.
func GetDatabaseCredentialsFromRelationData(data map[string]string) (map[string]interface{}, error) {
	encoded, ok := data[RelationDataKey]
	if !ok {
		return map[string]interface{}{}, nil
	}
	creds := make(map[string]interface{})
	if err := json.Unmarshal([]byte(encoded), &creds); err != nil {
		return nil, errors.Annotatef(err, "decoding %q", RelationDataKey)
	}
	return creds, nil
}
