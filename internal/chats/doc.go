// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package chats implements group chat membership changes.

The Engine resolves usernames into a membership Delta, enforces the group
capacity, and writes the new member list with a single compare-and-swap so
concurrent additions and removals on the same chat cannot interleave.

# Rules

  - The owner is never a member in Chat.Users and can never be removed.
  - Unknown usernames, duplicates, and users already in the desired state are
    dropped silently.
  - Non-owner membership may not exceed MaxGroupMembers (99), so a group holds
    at most 100 participants including the owner.
  - Removing from a chat with no members is a ValidationError.
  - A username may not appear in both the add and remove lists.

# Usage

	engine := chats.NewEngine(st, st)
	chat, err := engine.UpdateMembers(ctx, chatID, requesterID, []string{"bob"}, nil)
	var verr *chats.ValidationError
	if errors.As(err, &verr) {
	    // 400 with verr.Field
	}
*/
package chats
