package fuzz

import (
	"fmt"
	"strings"

	"github.com/evoprobe/evoprobe/internal/amf"
)

// Strategy names a candidate-generation policy.
type Strategy string

const (
	// StrategyActionDiscovery sweeps the action namespace: known category
	// prefixes crossed with verb suffixes, plus numbered and debug/admin
	// variants.
	StrategyActionDiscovery Strategy = "action-discovery"
	// StrategyParameterBoundary sends integer/string/array edge values
	// against a fixed target action.
	StrategyParameterBoundary Strategy = "parameter-boundary"
	// StrategyTypeConfusion sends wrong-typed values for well-known
	// parameter names.
	StrategyTypeConfusion Strategy = "type-confusion"
	// StrategySequenceBreaking invokes post-authentication and
	// out-of-order completion actions directly.
	StrategySequenceBreaking Strategy = "sequence-breaking"
)

// Candidate is one synthetic action to attempt. Ephemeral: generated per
// run, never persisted.
type Candidate struct {
	ActionName string
	Params     amf.Value
}

// Category prefixes and verb suffixes observed across captures. The sweep is
// deliberately wider than the catalog: unknown prefixes are the point.
var (
	categoryPrefixes = []string{
		"castle", "hero", "troop", "army", "march", "alliance", "player",
		"quest", "mail", "shop", "item", "tech", "map", "rank", "war",
		"chat", "friend", "daily", "fortune", "server",
	}
	verbSuffixes = []string{
		"Info", "List", "Update", "Get", "Use", "Buy", "Sell", "Create",
		"Delete", "Open", "Claim", "Status", "Detail", "Config", "Reward",
	}
	debugVerbs = []string{"debug", "admin", "gm", "test", "cheat"}
)

// Generate produces the finite candidate sequence for cfg's strategy.
func Generate(cfg Config) ([]Candidate, error) {
	switch cfg.Strategy {
	case StrategyActionDiscovery:
		return actionDiscoveryCandidates(), nil
	case StrategyParameterBoundary:
		return parameterBoundaryCandidates(cfg.TargetAction, cfg.TargetParameter), nil
	case StrategyTypeConfusion:
		return typeConfusionCandidates(), nil
	case StrategySequenceBreaking:
		return sequenceBreakingCandidates(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}

// lowerFirst turns a verb suffix into its wire spelling: "Info" -> "info".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func actionDiscoveryCandidates() []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, Candidate{ActionName: name, Params: amf.Object(nil)})
	}

	for _, prefix := range categoryPrefixes {
		for _, suffix := range verbSuffixes {
			add(prefix + "." + lowerFirst(suffix))
		}
		for _, verb := range debugVerbs {
			add(prefix + "." + verb)
		}
		for i := 1; i <= 3; i++ {
			add(fmt.Sprintf("%s.action%d", prefix, i))
		}
	}
	return out
}

func parameterBoundaryCandidates(action, param string) []Candidate {
	longString := strings.Repeat("A", 1024)
	bigArray := make([]amf.Value, 100)
	for i := range bigArray {
		bigArray[i] = amf.Int(int32(i))
	}

	edges := []amf.Value{
		amf.Int(0),
		amf.Int(1),
		amf.Int(-1),
		amf.Int(amf.IntMax),
		amf.Int(amf.IntMin),
		amf.Double(2147483648),
		amf.Double(-0.5),
		amf.String(""),
		amf.String(longString),
		amf.String("' OR '1'='1"),
		amf.String("<script>alert(1)</script>"),
		amf.String("../../../etc/passwd"),
		amf.String("%s%s%s%n"),
		amf.Array(),
		amf.Array(bigArray...),
		amf.Array(amf.Array(amf.Array(amf.Int(1)))),
		amf.Null(),
	}

	out := make([]Candidate, 0, len(edges))
	for _, edge := range edges {
		out = append(out, Candidate{
			ActionName: action,
			Params:     amf.Object(map[string]amf.Value{param: edge}),
		})
	}
	return out
}

// wellKnownParams maps parameter names to the type the server expects, so
// the confusion set can send everything else.
var wellKnownParams = []string{
	"cityId", "heroId", "armyId", "marchId", "playerId", "allianceId",
	"positionId", "amount", "name",
}

func typeConfusionCandidates() []Candidate {
	confusions := []amf.Value{
		amf.String("seven"),
		amf.Bool(true),
		amf.Double(1.5),
		amf.Null(),
		amf.Array(amf.Int(1)),
		amf.Object(map[string]amf.Value{"nested": amf.Int(1)}),
	}

	var out []Candidate
	for _, param := range wellKnownParams {
		for _, v := range confusions {
			out = append(out, Candidate{
				ActionName: "castle.getCastleInfo",
				Params:     amf.Object(map[string]amf.Value{param: v}),
			})
		}
	}
	return out
}

func sequenceBreakingCandidates() []Candidate {
	// Actions the client only issues after login or mid-flow; invoking them
	// cold probes the server's session checks.
	direct := []Candidate{
		{ActionName: "player.getPlayerInfo", Params: amf.Object(nil)},
		{ActionName: "castle.getCastleInfo", Params: amf.Object(map[string]amf.Value{"cityId": amf.Int(1)})},
		{ActionName: "alliance.create", Params: amf.Object(map[string]amf.Value{"name": amf.String("zz")})},
		{ActionName: "hero.hire", Params: amf.Object(map[string]amf.Value{"heroId": amf.Int(1)})},
		{ActionName: "march.startMarch", Params: amf.Object(map[string]amf.Value{
			"marchId": amf.Int(1), "targetX": amf.Int(0), "targetY": amf.Int(0),
		})},
		{ActionName: "quest.claimReward", Params: amf.Object(map[string]amf.Value{"questId": amf.Int(1)})},
		{ActionName: "tutorial.complete", Params: amf.Object(nil)},
		{ActionName: "tutorial.skip", Params: amf.Object(nil)},
		{ActionName: "server.selectServer", Params: amf.Object(map[string]amf.Value{"serverId": amf.Int(1)})},
		{ActionName: "shop.buyItem", Params: amf.Object(map[string]amf.Value{
			"itemId": amf.Int(1), "amount": amf.Int(0),
		})},
	}
	return direct
}
