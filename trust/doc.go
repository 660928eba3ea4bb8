// Package trust implements the positive-trust ledger for (account, device)
// pairs. Entries accelerate trusted-device checks; the account record stays
// authoritative, so a cold or flushed ledger only costs an extra lookup.
package trust
