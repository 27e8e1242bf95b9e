// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm implements the legend database manager charm, which shares
// a MongoDB relation with related FINOS Legend services.
package charm

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/canonical/legend-database-manager/core/status"
	"github.com/canonical/legend-database-manager/hook"
	"github.com/canonical/legend-database-manager/jujuc"
	"github.com/canonical/legend-database-manager/legenddb"
)

var logger = loggo.GetLogger("legenddb.charm")

const (
	// MongoDBRelationName is the endpoint related to mongodb-k8s.
	MongoDBRelationName = "db"

	// LegendDBRelationName is the endpoint Legend services relate to.
	LegendDBRelationName = legenddb.DefaultRelationName
)

var statusRequiresMongoDB = status.BlockedStatus("requires relating to: mongodb-k8s")

const statusMalformedData = "failed to process MongoDB connection data for legend db " +
	"format, please review the debug-log for full details"

// MongoConsumer is the MongoDB side of the charm.
type MongoConsumer interface {
	// Credentials returns the credentials MongoDB published, or nil.
	Credentials(relationId int) (map[string]interface{}, error)

	// Databases returns the databases MongoDB created for the charm.
	Databases(relationId int) ([]interface{}, error)

	// NewDatabase asks MongoDB to create a database.
	NewDatabase() error
}

// Context is the part of the hook context the charm uses.
type Context interface {
	jujuc.ContextStatus
	jujuc.ContextLeadership
	jujuc.ContextRelations
	jujuc.ContextConfig
}

// LegendDatabaseManager shares the MongoDB credentials with related Legend
// services and keeps the unit status in line with what it could do.
type LegendDatabaseManager struct {
	ctx   Context
	mongo MongoConsumer
	state *State
}

// NewLegendDatabaseManager returns a charm handling hooks with the given
// context, MongoDB consumer and stored state.
func NewLegendDatabaseManager(ctx Context, mongo MongoConsumer, state *State) *LegendDatabaseManager {
	return &LegendDatabaseManager{
		ctx:   ctx,
		mongo: mongo,
		state: state,
	}
}

// Dispatch handles a single hook. Problems with the relations end up in the
// unit status; only failing to set that status is returned.
func (m *LegendDatabaseManager) Dispatch(info hook.Info) error {
	logger.Debugf("handling %v", info)
	switch info.Kind {
	case hook.Install:
		return m.setStatus(statusRequiresMongoDB)
	case hook.ConfigChanged:
		return m.configChanged()
	case hook.LeaderElected, hook.UpgradeCharm:
		return m.republishCredentials()
	}

	switch info.RelationName {
	case MongoDBRelationName:
		switch info.Kind {
		case hook.RelationChanged:
			return m.mongoRelationChanged(info.RelationId)
		case hook.RelationBroken:
			return m.mongoRelationBroken()
		}
	case LegendDBRelationName:
		if info.Kind == hook.RelationJoined {
			return m.legendRelationJoined(info.RelationId)
		}
	}
	logger.Tracef("nothing to do for %v", info)
	return nil
}

func (m *LegendDatabaseManager) setStatus(info status.StatusInfo) error {
	logger.Debugf("setting unit status to %v", info)
	return errors.Annotate(m.ctx.SetUnitStatus(info), "setting unit status")
}

func (m *LegendDatabaseManager) configChanged() error {
	value, err := m.ctx.ConfigGet("log-level")
	if err != nil {
		return errors.Annotate(err, "reading log-level")
	}
	level := DefaultLogLevel
	if s, ok := value.(string); ok && s != "" {
		level = s
	}
	if _, ok := loggo.ParseLevel(level); !ok {
		logger.Errorf("invalid log-level %q", level)
		return m.setStatus(status.BlockedStatus("invalid log-level %q", level))
	}
	if err := ApplyLogLevel(level); err != nil {
		return errors.Trace(err)
	}
	m.state.LogLevel = level
	return nil
}

// ApplyLogLevel sets the root logging level.
func ApplyLogLevel(level string) error {
	return errors.Trace(loggo.ConfigureLoggers("<root>=" + level))
}

// getMongoDBCredentials derives the Legend credentials from the MongoDB
// relation with the given id, or the only one with hook.NoRelation.
func (m *LegendDatabaseManager) getMongoDBCredentials(relationId int) (legenddb.DatabaseCredentials, error) {
	mongoCreds, err := m.mongo.Credentials(relationId)
	if err != nil {
		return legenddb.DatabaseCredentials{}, errors.Annotate(err, "reading mongo credentials")
	}
	if len(mongoCreds) == 0 {
		return legenddb.DatabaseCredentials{}, notReady("waiting for mongo database credentials")
	}

	databases, err := m.mongo.Databases(relationId)
	if err != nil {
		return legenddb.DatabaseCredentials{}, errors.Annotate(err, "reading mongo databases")
	}
	if len(databases) == 0 {
		if err := m.mongo.NewDatabase(); err != nil {
			logger.Warningf("requesting a new mongo database: %v", err)
		}
		return legenddb.DatabaseCredentials{}, notReady("waiting for mongo database creation")
	}

	creds, err := legenddb.GetDatabaseConnectionFromMongoData(mongoCreds, databases)
	if err != nil {
		logger.Errorf("processing mongo connection data: %v", err)
		return legenddb.DatabaseCredentials{}, malformed(err, statusMalformedData)
	}
	logger.Debugf("current Legend MongoDB creds provided by the relation are: %+v", creds.Redacted())
	m.state.Credentials = &creds
	return creds, nil
}

// setCredentialsInRelation writes the credentials into the application
// data of the legend-db relation with the given id.
func (m *LegendDatabaseManager) setCredentialsInRelation(creds legenddb.DatabaseCredentials, relationId int) error {
	data := make(map[string]string)
	if err := legenddb.SetDatabaseCredentialsInRelationData(data, creds); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(m.ctx.SetApplicationSettings(relationId, data))
}

// setCredentialsInRelations shares the credentials with every related
// Legend service. A failure on one relation does not stop the others; the
// returned status names the first relation that failed.
func (m *LegendDatabaseManager) setCredentialsInRelations(creds legenddb.DatabaseCredentials) (*status.StatusInfo, error) {
	leader, err := m.ctx.IsLeader()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !leader {
		logger.Debugf("leaving %q relation data to the leader", LegendDBRelationName)
		return nil, nil
	}
	ids, err := m.ctx.RelationIds(LegendDBRelationName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var blocked *status.StatusInfo
	for _, id := range ids {
		if err := m.setCredentialsInRelation(creds, id); err != nil {
			logger.Errorf("setting creds in legend db relation %d: %v", id, err)
			if blocked == nil {
				info := status.BlockedStatus("failed to set creds in legend db relation: %d", id)
				blocked = &info
			}
		}
	}
	return blocked, nil
}

func (m *LegendDatabaseManager) mongoRelationChanged(relationId int) error {
	creds, err := m.getMongoDBCredentials(relationId)
	if err != nil {
		logger.Infof("mongo relation %d not ready: %v", relationId, err)
		return m.setStatus(statusForError(err))
	}
	blocked, err := m.setCredentialsInRelations(creds)
	if err != nil {
		logger.Errorf("sharing creds with legend services: %v", err)
		return m.setStatus(statusForError(err))
	}
	if blocked != nil {
		return m.setStatus(*blocked)
	}
	return m.setStatus(status.ActiveStatus())
}

func (m *LegendDatabaseManager) mongoRelationBroken() error {
	m.state.Credentials = nil
	return m.setStatus(statusRequiresMongoDB)
}

func (m *LegendDatabaseManager) legendRelationJoined(relationId int) error {
	creds, err := m.getMongoDBCredentials(hook.NoRelation)
	if err != nil {
		logger.Warningf("could not provide Legend MongoDB creds to relation %d as none are currently available: %v", relationId, err)
		return m.setStatus(statusForError(err))
	}
	leader, err := m.ctx.IsLeader()
	if err != nil {
		return m.setStatus(statusForError(err))
	}
	if !leader {
		return nil
	}
	if err := m.setCredentialsInRelation(creds, relationId); err != nil {
		logger.Errorf("setting creds in legend db relation %d: %v", relationId, err)
		return m.setStatus(status.BlockedStatus("failed to set creds in legend db relation: %d", relationId))
	}
	return nil
}

// republishCredentials shares the stored credentials again without asking
// MongoDB, e.g. after leadership moved to this unit.
func (m *LegendDatabaseManager) republishCredentials() error {
	if m.state.Credentials == nil {
		logger.Debugf("no stored credentials to share")
		return nil
	}
	blocked, err := m.setCredentialsInRelations(*m.state.Credentials)
	if err != nil {
		return m.setStatus(statusForError(err))
	}
	if blocked != nil {
		return m.setStatus(*blocked)
	}
	return nil
}
