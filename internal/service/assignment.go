package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qaztriage/backend/internal/geo"
	"github.com/qaztriage/backend/internal/models"
	"github.com/qaztriage/backend/internal/observability"
)

// RoleChiefSpecialist is the title required for personal data changes.
const RoleChiefSpecialist = "Глав спец"

const (
	pathPrimary     = "primary-filter"
	pathNearest     = "nearest-city-fallback"
	pathCrossBorder = "cross-border-fallback"
	pathUnassigned  = "unassigned"
)

// EngineOptions tune office selection. Zero values fall back to the
// production defaults below.
type EngineOptions struct {
	HomeCountry     string
	FallbackOffices [2]string
	// RegionOffices maps a lower-cased region-name substring to an office.
	RegionOffices map[string]string
	// ExtraCoords supplements the static city table, keyed by lower-cased
	// city name (e.g. geocoded business-unit addresses).
	ExtraCoords map[string]geo.Point
}

var defaultRegionOffices = map[string]string{
	"акмолин":     "Астана",
	"алматин":     "Алматы",
	"туркестан":   "Шымкент",
	"караганд":    "Караганда",
	"актюбин":     "Актобе",
	"жамбыл":      "Тараз",
	"павлодар":    "Павлодар",
	"восточно":    "Усть-Каменогорск",
	"абай":        "Семей",
	"атырау":      "Атырау",
	"костанай":    "Костанай",
	"кызылордин":  "Кызылорда",
	"западно":     "Уральск",
	"северо":      "Петропавловск",
	"мангистау":   "Актау",
	"улытау":      "Караганда",
	"жетісу":      "Талдыкорган",
	"жетысу":      "Талдыкорган",
}

// AssignmentEngine maps a classified ticket to one agent. It owns the
// per-office round-robin counters and the cross-border office toggle; both
// are reset only at construction. A single assignment pass must not run
// concurrently over the same engine.
type AssignmentEngine struct {
	homeCountry      string
	fallbackOffices  [2]string
	regionOffices    map[string]string
	extraCoords      map[string]geo.Point
	offices          []models.BusinessUnit
	officeNames      map[string]string // lower-cased -> canonical
	managersByOffice map[string][]*models.Manager

	fallbackFlip bool
	roundRobin   map[string]int
}

func NewAssignmentEngine(managers []*models.Manager, offices []models.BusinessUnit, opts EngineOptions) *AssignmentEngine {
	if opts.HomeCountry == "" {
		opts.HomeCountry = "Казахстан"
	}
	if opts.FallbackOffices == ([2]string{}) {
		opts.FallbackOffices = [2]string{"Астана", "Алматы"}
	}
	if opts.RegionOffices == nil {
		opts.RegionOffices = defaultRegionOffices
	}

	e := &AssignmentEngine{
		homeCountry:      opts.HomeCountry,
		fallbackOffices:  opts.FallbackOffices,
		regionOffices:    opts.RegionOffices,
		extraCoords:      opts.ExtraCoords,
		offices:          offices,
		officeNames:      make(map[string]string, len(offices)),
		managersByOffice: make(map[string][]*models.Manager),
		roundRobin:       make(map[string]int),
	}
	for _, o := range offices {
		e.officeNames[strings.ToLower(strings.TrimSpace(o.Name))] = o.Name
	}
	for _, m := range managers {
		e.managersByOffice[m.Office] = append(e.managersByOffice[m.Office], m)
	}
	return e
}

// Assign returns exactly one assignment record and mutates at most one
// agent's workload (by +1, on success). It never fails: when no agent is
// eligible anywhere, the record carries an empty manager name and an
// explanatory reason.
func (e *AssignmentEngine) Assign(t models.Ticket, meta models.AIMetadata) models.ProcessedTicket {
	office, officePath := e.selectOffice(t)
	path := pathPrimary

	pool := e.eligible(office, t, meta)
	if len(pool) == 0 {
		if nearest, nearestPool, ok := e.nearestOffice(t, office, meta); ok {
			office = nearest
			pool = nearestPool
			path = pathNearest
		}
	}
	if officePath == pathCrossBorder && path == pathPrimary {
		path = pathCrossBorder
	}

	if len(pool) == 0 {
		observability.AssignmentsTotal.WithLabelValues("unassigned").Inc()
		return e.record(t, nil, office,
			fmt.Sprintf("no agent matched: office %s has no eligible candidates and no reachable office does either", office))
	}

	chosen := e.pick(office, pool)
	chosen.CurrentLoad++

	observability.AssignmentsTotal.WithLabelValues(path).Inc()
	return e.record(t, chosen, office,
		fmt.Sprintf("%s: office %s, %d eligible candidate(s)", path, office, len(pool)))
}

// selectOffice implements the primary office decision: cross-border
// fallback for incomplete or foreign addresses, exact settlement match,
// region lookup, then the least-loaded office.
func (e *AssignmentEngine) selectOffice(t models.Ticket) (string, string) {
	if e.addressIncomplete(t) || !strings.EqualFold(strings.TrimSpace(t.Country), e.homeCountry) {
		return e.crossBorderOffice(), pathCrossBorder
	}

	settlement := strings.ToLower(strings.TrimSpace(t.Settlement))
	if canonical, ok := e.officeNames[settlement]; ok {
		return canonical, pathPrimary
	}

	if office, ok := e.regionOffice(t.Region); ok {
		return office, pathPrimary
	}

	if office, ok := e.leastLoadedOffice(); ok {
		return office, pathPrimary
	}
	return e.crossBorderOffice(), pathCrossBorder
}

func (e *AssignmentEngine) addressIncomplete(t models.Ticket) bool {
	return strings.TrimSpace(t.Country) == "" ||
		strings.TrimSpace(t.Region) == "" ||
		strings.TrimSpace(t.Settlement) == ""
}

// crossBorderOffice alternates deterministically between the two default
// offices on successive invocations.
func (e *AssignmentEngine) crossBorderOffice() string {
	idx := 0
	if e.fallbackFlip {
		idx = 1
	}
	e.fallbackFlip = !e.fallbackFlip
	return e.fallbackOffices[idx]
}

func (e *AssignmentEngine) regionOffice(region string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(region))
	if r == "" {
		return "", false
	}
	// Sorted iteration keeps the lookup deterministic when several
	// substrings match.
	keys := make([]string, 0, len(e.regionOffices))
	for substr := range e.regionOffices {
		keys = append(keys, substr)
	}
	sort.Strings(keys)
	for _, substr := range keys {
		if strings.Contains(r, substr) {
			return e.regionOffices[substr], true
		}
	}
	return "", false
}

func (e *AssignmentEngine) leastLoadedOffice() (string, bool) {
	best := ""
	bestLoad := 0
	for _, o := range e.offices {
		load := 0
		for _, m := range e.managersByOffice[o.Name] {
			load += m.CurrentLoad
		}
		if best == "" || load < bestLoad || (load == bestLoad && o.Name < best) {
			best = o.Name
			bestLoad = load
		}
	}
	return best, best != ""
}

// eligible applies the hard-skill filters: VIP tag for vip/priority
// segments, chief-specialist title for data changes, and a language skill
// tag for non-Russian tickets.
func (e *AssignmentEngine) eligible(office string, t models.Ticket, meta models.AIMetadata) []*models.Manager {
	segment := strings.ToLower(t.Segment)
	needsVIP := strings.Contains(segment, "vip") || strings.Contains(segment, "priority")
	needsChief := meta.RequestType == models.TypeDataChange
	needsLang := meta.Language != models.LangRU

	var out []*models.Manager
	for _, m := range e.managersByOffice[office] {
		if needsVIP && !hasSkill(m.Skills, "VIP") {
			continue
		}
		if needsChief && !strings.EqualFold(strings.TrimSpace(m.Role), RoleChiefSpecialist) {
			continue
		}
		if needsLang && !hasSkill(m.Skills, string(meta.Language)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// nearestOffice evaluates every office with at least one eligible
// candidate by great-circle distance from the ticket's resolved origin
// city. Offices without known coordinates are excluded; ties break by the
// candidate office's minimum agent workload, then by name.
func (e *AssignmentEngine) nearestOffice(t models.Ticket, primary string, meta models.AIMetadata) (string, []*models.Manager, bool) {
	origin, ok := e.originPoint(t, primary)
	if !ok {
		return "", nil, false
	}

	bestName := ""
	bestDist := 0.0
	bestLoad := 0
	var bestPool []*models.Manager

	for _, o := range e.offices {
		if strings.EqualFold(o.Name, primary) {
			continue
		}
		pool := e.eligible(o.Name, t, meta)
		if len(pool) == 0 {
			continue
		}
		pt, ok := e.lookupCoords(o.Name)
		if !ok {
			continue
		}
		dist := geo.HaversineKm(origin, pt)
		minLoad := pool[0].CurrentLoad
		for _, m := range pool[1:] {
			if m.CurrentLoad < minLoad {
				minLoad = m.CurrentLoad
			}
		}

		better := bestName == "" || dist < bestDist ||
			(dist == bestDist && (minLoad < bestLoad || (minLoad == bestLoad && o.Name < bestName)))
		if better {
			bestName = o.Name
			bestDist = dist
			bestLoad = minLoad
			bestPool = pool
		}
	}
	return bestName, bestPool, bestName != ""
}

// originPoint resolves the ticket's origin city: the settlement when its
// coordinates are known, else the region-mapped office, else the primary
// office itself.
func (e *AssignmentEngine) originPoint(t models.Ticket, primary string) (geo.Point, bool) {
	if pt, ok := e.lookupCoords(t.Settlement); ok {
		return pt, true
	}
	if office, ok := e.regionOffice(t.Region); ok {
		if pt, ok := e.lookupCoords(office); ok {
			return pt, true
		}
	}
	return e.lookupCoords(primary)
}

func (e *AssignmentEngine) lookupCoords(city string) (geo.Point, bool) {
	if pt, ok := geo.LookupCity(city); ok {
		return pt, true
	}
	if e.extraCoords != nil {
		pt, ok := e.extraCoords[strings.ToLower(strings.TrimSpace(city))]
		return pt, ok
	}
	return geo.Point{}, false
}

// pick orders the pool by ascending workload then name and takes the two
// least-loaded candidates. An equal-workload pair is split by the office's
// alternation index; the index advances on every selection at the office.
func (e *AssignmentEngine) pick(office string, pool []*models.Manager) *models.Manager {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].CurrentLoad == pool[j].CurrentLoad {
			return pool[i].Name < pool[j].Name
		}
		return pool[i].CurrentLoad < pool[j].CurrentLoad
	})

	idx := e.roundRobin[office]
	e.roundRobin[office]++

	if len(pool) >= 2 && pool[0].CurrentLoad == pool[1].CurrentLoad && idx%2 == 1 {
		return pool[1]
	}
	return pool[0]
}

func (e *AssignmentEngine) record(t models.Ticket, m *models.Manager, office, reason string) models.ProcessedTicket {
	pt := models.ProcessedTicket{
		ID:         uuid.NewString(),
		TicketID:   t.ID,
		Office:     office,
		Reason:     reason,
		AssignedAt: time.Now().UTC(),
	}
	if m != nil {
		pt.ManagerID = &m.ID
		pt.ManagerName = m.Name
	}
	return pt
}

func hasSkill(skills []string, target string) bool {
	for _, s := range skills {
		if strings.EqualFold(strings.TrimSpace(s), target) {
			return true
		}
	}
	return false
}
