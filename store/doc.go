// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the persistence gateway for attendance and voting.

Every statement is a method on Queries, which runs against the pool or, inside
InTx, against a transaction:

	st := store.New(conn, db.Postgres)
	err := st.InTx(ctx, func(q *store.Queries) error {
		if err := q.OpenSession(ctx, meetingID, now); err != nil {
			return err
		}
		_, err := q.DeleteVotes(ctx, meetingID)
		return err
	})

Participants are passed as models.Participant. This package alone spreads
them into the nullable member_id/guest_id column pair and folds them back.

Missing rows come back as ErrNotFound. Constraint failures are returned
wrapped; classify them with db.IsUniqueViolation and
db.IsForeignKeyViolation.
*/
package store
