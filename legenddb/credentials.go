// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package legenddb defines the database credentials the legend database
// manager shares with FINOS Legend services, how they are derived from the
// data published by MongoDB, and how they travel in relation data.
package legenddb

import (
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/schema"
)

// DatabaseCredentials are the connection details handed to Legend services.
type DatabaseCredentials struct {
	// URI is the MongoDB connection URI without the database path.
	URI      string `json:"uri"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Map returns the credentials as a relation-style map. Empty fields are
// left out, so a partially populated value does not validate.
func (c DatabaseCredentials) Map() map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range map[string]string{
		"uri":      c.URI,
		"username": c.Username,
		"password": c.Password,
		"database": c.Database,
	} {
		if v != "" {
			result[k] = v
		}
	}
	return result
}

// Redacted returns a copy of the credentials safe to log.
func (c DatabaseCredentials) Redacted() DatabaseCredentials {
	if c.Password != "" {
		c.Password = "<redacted>"
	}
	return c
}

// RequiredCredentialFields holds the keys every set of Legend database
// credentials must define.
var RequiredCredentialFields = set.NewStrings("uri", "username", "password", "database")

// credentialsChecker requires a map of strings to strings.
var credentialsChecker = schema.StringMap(schema.String())

// requiredChecker requires the Legend credential fields.
var requiredChecker = schema.FieldMap(fieldsOf(RequiredCredentialFields), nil)

// mongoMapChecker requires a string keyed map of anything.
var mongoMapChecker = schema.StringMap(schema.Any())

// mongoCredentialsChecker requires the fields MongoDB publishes.
var mongoCredentialsChecker = schema.FieldMap(fieldsOf(set.NewStrings("username", "password", "replica_set_uri")), nil)

// databasesChecker requires a list of database names.
var databasesChecker = schema.List(schema.String())

func fieldsOf(names set.Strings) schema.Fields {
	fields := make(schema.Fields)
	for _, name := range names.SortedValues() {
		fields[name] = schema.String()
	}
	return fields
}

// ValidateCredentials returns an error unless creds is a map of strings to
// strings defining every required credential field. Empty strings are
// accepted in a map, but a DatabaseCredentials value must have every field
// set: its zero fields are taken as missing, since the zero value stands for
// "no credentials". GetDatabaseConnectionFromMongoData relies on this to
// reject a replica set URI with nothing before the database path.
func ValidateCredentials(creds interface{}) error {
	switch c := creds.(type) {
	case DatabaseCredentials:
		creds = c.Map()
	case *DatabaseCredentials:
		if c == nil {
			return errors.NotValidf("nil credentials")
		}
		creds = c.Map()
	}
	if _, err := credentialsChecker.Coerce(creds, nil); err != nil {
		return errors.NewNotValid(err, "legend database credentials")
	}
	if _, err := requiredChecker.Coerce(creds, nil); err != nil {
		return errors.NewNotValid(err, "legend database credentials")
	}
	return nil
}

// IsValidCredentials reports whether ValidateCredentials accepts creds.
func IsValidCredentials(creds interface{}) bool {
	return ValidateCredentials(creds) == nil
}

// GetDatabaseConnectionFromMongoData builds the Legend database credentials
// out of the credentials and database list published by MongoDB. The
// connection always targets the first database in the list, whose name must
// be the last path segment of the replica set URI.
func GetDatabaseConnectionFromMongoData(mongoCreds, databases interface{}) (DatabaseCredentials, error) {
	if _, err := mongoMapChecker.Coerce(mongoCreds, nil); err != nil {
		return DatabaseCredentials{}, errors.NewNotValid(err, "mongo credentials")
	}
	coerced, err := mongoCredentialsChecker.Coerce(mongoCreds, nil)
	if err != nil {
		return DatabaseCredentials{}, errors.NewNotValid(err, "mongo credentials")
	}
	fields := coerced.(map[string]interface{})

	if databases == nil {
		return DatabaseCredentials{}, errors.NotValidf("missing mongo databases")
	}
	coercedDBs, err := databasesChecker.Coerce(databases, nil)
	if err != nil {
		return DatabaseCredentials{}, errors.NewNotValid(err, "mongo databases")
	}
	names := coercedDBs.([]interface{})
	if len(names) == 0 {
		return DatabaseCredentials{}, errors.NotValidf("empty mongo databases")
	}
	database := names[0].(string)

	uri := fields["replica_set_uri"].(string)
	idx := strings.LastIndex(uri, "/")
	if idx == -1 {
		return DatabaseCredentials{}, errors.NotValidf("replica set URI %q without a database path", uri)
	}
	if suffix := uri[idx+1:]; suffix != database {
		return DatabaseCredentials{}, errors.NotValidf("replica set URI database %q (expected %q)", suffix, database)
	}

	creds := DatabaseCredentials{
		URI:      uri[:idx],
		Username: fields["username"].(string),
		Password: fields["password"].(string),
		Database: database,
	}
	if err := ValidateCredentials(creds); err != nil {
		return DatabaseCredentials{}, errors.Trace(err)
	}
	return creds, nil
}
