// usb-screen - stream still images to a serial attached display
//  Copyright (C) 2020, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/godbus/dbus"
)

const streamFailedEvent = "usb-screen-stream-failed"

// reportStreamFailure queues an event with the event reporter so the
// failure shows up after the next upload. Errors are only logged.
func reportStreamFailure(cause error) {
	ts := time.Now()
	detailsJSON, err := streamFailedDetails(cause)
	if err != nil {
		log.Printf("could not record stream failure event: %v", err)
		return
	}

	conn, err := dbus.SystemBus()
	if err != nil {
		log.Printf("could not record stream failure event: %v", err)
		return
	}

	obj := conn.Object("org.cacophony.Events", "/org/cacophony/Events")
	call := obj.Call("org.cacophony.Events.Queue", 0, detailsJSON, ts.UnixNano())
	if call.Err != nil {
		log.Printf("could not record stream failure event: %v", call.Err)
	}
}

func streamFailedDetails(cause error) ([]byte, error) {
	eventDetails := map[string]interface{}{
		"description": map[string]interface{}{
			"type": streamFailedEvent,
			"details": map[string]interface{}{
				"error": cause.Error(),
			},
		},
	}
	return json.Marshal(&eventDetails)
}
