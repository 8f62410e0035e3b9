// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for voteserver.

voteserver runs live polls for a room full of people. Participants connect
with a plain line-oriented TCP client (telnet, nc), enter their name and
then answer each poll the operator opens. The operator drives everything
from the server's console.

# Starting the Server

	voteserver -c meeting.yaml 4000

Or with environment variables (a .env file in the working directory is
read first):

	PORT=4000 POLL_CONFIG=meeting.yaml voteserver

# Configuration

  - PORT (-p): Participant port (default: 3318)
  - POLL_CONFIG (-c): Poll YAML file (default: vote.yaml)
  - DATABASE_URL (-d), DATABASE_TYPE (-t): Optional result archive
  - SHUTDOWN_GRACE (-grace): Time sessions get to finish on exit
  - LOG_LEVEL, LOG_FORMAT: Logging

# Architecture

  - session: Per-connection protocol and ballot parsing
  - registrar: Session directory and poll fan-out
  - aggregator: Ballot tallies
  - results: Vote counting and instant-runoff tabulation
  - polls: Poll definitions, YAML loading, open set
  - control: Operator operations on the running workers
  - server: TCP accept loop
  - console, router, handlers, middleware: Operator commands
  - db: Result archive
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
