// Package holding manages the on-disk holding area that hosts the shared
// store: directory resolution, the RUNNING liveness marker, stale-area
// reclamation, and the heartbeat worker.
//
// One holding area exists per process instance at {root}/{instance-id}. In
// cloud mode the root itself is the holding area and may be shared, so
// removal only touches the marker or the area's contents, never the root
// directory.
//
// A live process rewrites RUNNING every heartbeat interval; an area whose
// marker is older than the stale threshold belongs to a crashed predecessor
// and is reclaimed before a new store is opened there.
package holding
