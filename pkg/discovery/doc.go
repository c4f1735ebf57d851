// Package discovery announces and finds mzt-web instances on the local
// network over mDNS/DNS-SD.
//
// A server registers a "_mzt._tcp" service in the "local" domain. TXT
// records carry the API format version, the API base path, a display name
// and an instance ID:
//
//	v=1.0 path=/api/v1 name=kitchen id=3f2a...
//
// Browse collects the services seen within a timeout. Entries for the same
// instance arriving on several interfaces are merged into one Service.
package discovery
