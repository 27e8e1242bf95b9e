// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hook

// Kind enumerates the different kinds of hooks that exist.
type Kind string

const (
	// None of these hooks are ever associated with a relation; each of them
	// represents a change to the state of the unit as a whole. The values
	// themselves are all valid hook names.
	Install       Kind = "install"
	Start         Kind = "start"
	ConfigChanged Kind = "config-changed"
	UpgradeCharm  Kind = "upgrade-charm"
	LeaderElected Kind = "leader-elected"
	UpdateStatus  Kind = "update-status"
	Stop          Kind = "stop"
	Remove        Kind = "remove"

	LeaderSettingsChanged Kind = "leader-settings-changed"
	CollectMetrics        Kind = "collect-metrics"
	MeterStatusChanged    Kind = "meter-status-changed"
	PreSeriesUpgrade      Kind = "pre-series-upgrade"
	PostSeriesUpgrade     Kind = "post-series-upgrade"

	// Secret hooks are about the unit as a whole, but Juju sets
	// JUJU_SECRET_ID for them.
	SecretChanged Kind = "secret-changed"
	SecretExpired Kind = "secret-expired"
	SecretRemove  Kind = "secret-remove"
	SecretRotate  Kind = "secret-rotate"

	// These hooks require an associated relation, and the name of the relation
	// unit whose change triggered the hook. The hook file names that these
	// kinds represent will be prefixed by the relation name; for example,
	// "db-relation-joined".
	RelationCreated  Kind = "relation-created"
	RelationJoined   Kind = "relation-joined"
	RelationChanged  Kind = "relation-changed"
	RelationDeparted Kind = "relation-departed"

	// This hook requires an associated relation. The represented hook file name
	// will be prefixed by the relation name, just like the other Relation* Kind
	// values.
	RelationBroken Kind = "relation-broken"
)

var unitKinds = []Kind{
	Install, Start, ConfigChanged, UpgradeCharm, LeaderElected, UpdateStatus, Stop, Remove,
	LeaderSettingsChanged, CollectMetrics, MeterStatusChanged, PreSeriesUpgrade, PostSeriesUpgrade,
	SecretChanged, SecretExpired, SecretRemove, SecretRotate,
}

var relationKinds = []Kind{
	RelationCreated, RelationJoined, RelationChanged, RelationDeparted, RelationBroken,
}

// IsRelation returns whether the Kind represents a relation hook.
func (kind Kind) IsRelation() bool {
	for _, k := range relationKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// IsUnit returns whether the Kind represents a hook about the unit as a
// whole.
func (kind Kind) IsUnit() bool {
	for _, k := range unitKinds {
		if kind == k {
			return true
		}
	}
	return false
}
