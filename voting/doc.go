// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting runs a meeting's award vote.

A meeting has at most one voting session. Admins open it on the meeting day,
which discards any earlier ballots, and close it again when counting is done.
While the session is open anyone holding a voter token may submit one ranked
ballot covering any of the three categories: speaker, evaluator and table
topics. Nominees are derived from the meeting program rather than stored.

Once the session is closed, Tally scores each category at three points per
first place, two per second and one per third, and orders nominees by points,
then first-place votes, then second-place votes. The top three receive gold,
silver and bronze.

After the end of the meeting day (see clock.IsLocked) every voting action is
refused.
*/
package voting
