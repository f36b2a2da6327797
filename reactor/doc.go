// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the pollsets transports bind stream descriptors to:
// an epoll-backed Pollset on Linux, a descriptor-tracking fallback elsewhere,
// and PollsetSet for fanning one descriptor out to several pollsets.
package reactor
