package internal

import "time"

// Releve is one canonical price observation extracted from a raw feed
// record. Every field the feed may omit is a pointer; extraction degrades
// missing or unparseable attributes to nil instead of failing.
type Releve struct {
	ID          *string
	Date        *time.Time
	Jour        *string
	CP          *string
	Commune     *string
	Adresse     *string
	Carburant   *string
	Prix        *float64
	Latitude    *float64
	Longitude   *float64
	IDStation   *string
	Departement *string
}

// Key returns the identity used for deduplication: one observation per
// station, fuel type and calendar day. Missing components collapse to "".
func (r Releve) Key() string {
	return deref(r.IDStation) + "|" + deref(r.Carburant) + "|" + deref(r.Jour)
}

// MoyenneJournaliere is the per-day, per-fuel mean price aggregate derived
// from the accumulated history.
type MoyenneJournaliere struct {
	Jour      string
	Carburant string
	PrixMoyen float64
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
