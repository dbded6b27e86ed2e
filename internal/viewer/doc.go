// Package viewer reshapes OTP responses into the structures the route, stop
// and trip viewers render. Every function here is a pure transformation over
// already decoded records.
package viewer
