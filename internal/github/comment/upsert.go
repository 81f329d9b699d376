package comment

import (
	"context"
	"log"
	"strings"
)

// Identity is an ordered list of tags naming a managed comment slot.
// Order only affects search priority.
type Identity []string

// Tags builds an Identity. A single tag is the common case.
func Tags(tags ...string) Identity {
	return Identity(tags)
}

// Normalize trims every tag, drops blanks and duplicates, and falls back
// to DefaultTag when nothing is left.
func (id Identity) Normalize() Identity {
	seen := make(map[string]struct{}, len(id))
	out := make(Identity, 0, len(id))
	for _, raw := range id {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return Identity{DefaultTag}
	}
	return out
}

// Options controls how Publish treats earlier comments.
type Options struct {
	// Identity defaults to ["default"].
	Identity Identity

	// UpdateExisting overwrites a matching comment instead of posting a new one.
	UpdateExisting bool

	// AppendToExisting keeps the matching comment's body and adds the message
	// below it. Implies UpdateExisting.
	AppendToExisting bool
}

// settings is the fully defaulted form of Options.
type settings struct {
	identity Identity
	update   bool
	append   bool
}

func (o Options) settings() settings {
	return settings{
		identity: o.Identity.Normalize(),
		update:   o.UpdateExisting || o.AppendToExisting,
		append:   o.AppendToExisting,
	}
}

// upsertPlan is the outcome of the decision step: the body to write and
// the comment to overwrite, if any.
type upsertPlan struct {
	target *Comment
	body   string
	action Action
}

// plan looks up the identity's previous comment and decides the final body.
//
// Tags are searched in order and the first tag that resolves a comment wins,
// even when a later tag would match a different comment. Appending requires
// the match to carry every tag of the identity; otherwise the match is
// replaced wholesale.
func plan(ctx context.Context, resolver *Resolver, thread Thread, s settings, message string) (upsertPlan, error) {
	var match *Comment
	if s.update {
		for _, tag := range s.identity {
			found, err := resolver.FindFirst(ctx, thread, MessageHeader(tag), nil)
			if err != nil {
				return upsertPlan{}, err
			}
			if found != nil {
				log.Printf("[Comment] Found comment %d on %s for tag %q", found.ID, thread, tag)
				match = found
				break
			}
		}
	}

	header := Header(s.identity)
	if match == nil {
		return upsertPlan{body: header + message, action: ActionCreated}, nil
	}

	if s.append && hasAllMarkers(match.Body, s.identity) {
		// match.Body already starts with markers; each append stacks one more set.
		return upsertPlan{
			target: match,
			body:   header + match.Body + "\n\n" + message,
			action: ActionAppended,
		}, nil
	}

	return upsertPlan{target: match, body: header + message, action: ActionUpdated}, nil
}
