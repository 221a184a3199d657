package livesync

import (
	"context"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/system/viewstate"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.uber.org/zap"
)

// kind identifies one of the three live lists.
type kind int

const (
	kindWorkspaces kind = iota
	kindChannels
	kindMessages
	kindCount
)

func (k kind) source() viewstate.Source {
	switch k {
	case kindWorkspaces:
		return viewstate.SourceWorkspaces
	case kindChannels:
		return viewstate.SourceChannels
	default:
		return viewstate.SourceMessages
	}
}

// slot is the listener currently held for one kind. gen changes every
// time key does; events from an older gen are dropped. unsub is nil while
// the listener is still opening or when opening failed.
type slot struct {
	key   string
	gen   uint64
	unsub docstore.Unsubscribe
}

// desiredKeys reads which list keys the view state calls for.
func desiredKeys(s viewstate.State) [kindCount]string {
	var keys [kindCount]string
	if !s.SignedIn() {
		return keys
	}
	keys[kindWorkspaces] = s.User.UserID
	keys[kindChannels] = s.Workspace.CurrentWorkspaceID
	if keys[kindChannels] != "" {
		keys[kindMessages] = s.Channel.CurrentChannelID
	}
	return keys
}

// reconcile closes listeners whose key no longer matches the view state
// and opens replacements. Each listener is released exactly once.
func (e *Engine) reconcile() {
	want := desiredKeys(e.view.State())
	for k := kind(0); k < kindCount; k++ {
		if e.slots[k].key == want[k] {
			continue
		}
		e.closeSlot(k)
		e.gen++
		e.slots[k] = slot{key: want[k], gen: e.gen}
		if want[k] != "" {
			e.open(k, want[k], e.gen)
		}
	}
}

// closeSlot releases k's listener and invalidates its generation. A
// listener still opening is released when its opened event arrives.
func (e *Engine) closeSlot(k kind) {
	s := e.slots[k]
	if s.unsub != nil {
		e.release(s.unsub)
	}
	e.gen++
	e.slots[k] = slot{gen: e.gen}
}

func (e *Engine) release(unsub docstore.Unsubscribe) {
	e.helpers.Add(1)
	go func() {
		defer e.helpers.Done()
		unsub()
	}()
}

func (e *Engine) open(k kind, key string, gen uint64) {
	e.helpers.Add(1)
	go func() {
		defer e.helpers.Done()

		onError := func(err error) { e.post(failed{kind: k, gen: gen, err: err}) }
		var (
			unsub docstore.Unsubscribe
			err   error
		)
		ctx := context.Background()
		switch k {
		case kindWorkspaces:
			unsub, err = e.workspaces.SubscribeUserWorkspaces(ctx, key, func(refs []models.WorkspaceRef) {
				e.post(loaded{kind: k, gen: gen, action: viewstate.WorkspacesLoaded{UserID: key, Workspaces: refs}})
			}, onError)
		case kindChannels:
			unsub, err = e.channels.Subscribe(ctx, key, func(refs []models.ChannelRef) {
				e.post(loaded{kind: k, gen: gen, action: viewstate.ChannelsLoaded{WorkspaceID: key, Channels: refs}})
			}, onError)
		case kindMessages:
			unsub, err = e.messages.Subscribe(ctx, key, func(refs []models.MessageRef) {
				e.post(loaded{kind: k, gen: gen, action: viewstate.MessagesLoaded{ChannelID: key, Messages: refs}})
			}, onError)
		}

		if !e.post(opened{kind: k, gen: gen, unsub: unsub, err: err}) && unsub != nil {
			// Engine closed while opening.
			unsub()
		}
		if err == nil {
			e.logger.Debug("listener opened",
				zap.String("list", string(k.source())),
				zap.String("key", key))
		}
	}()
}
