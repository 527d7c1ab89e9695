// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package status holds the stable, numeric decode status codes surfaced to
// the host (spec §6/§7). It plays the role go-mp3's internal/consts plays
// for its own sentinel errors (e.g. UnexpectedEOF), but as a closed set of
// named codes rather than an open set of fmt.Errorf strings, since the
// host dispatches on the code's identity, not its text.
package status

// A Status is both a decode result code and an error. Success is the zero
// value so a freshly zeroed Status reads as "ok".
type Status int

const (
	Success Status = iota
	BadConfigData
	UnpackReuseBandParamsInvalid
	UnpackBandParamsInvalid
	UnpackGradBoundaryInvalid
	UnpackGradStartUnitOOB
	UnpackGradEndUnitOOB
	UnpackGradEndUnitInvalid
	UnpackGradStartValueOOB
	UnpackGradEndValueOOB
	UnpackScaleFactorModeInvalid
	UnpackScaleFactorOOB
	UnpackExtensionDataInvalid
	UnpackSuperframeFlagInvalid
)

var names = [...]string{
	Success:                      "success",
	BadConfigData:                "bad config data",
	UnpackReuseBandParamsInvalid: "reuse band params invalid",
	UnpackBandParamsInvalid:      "band params invalid",
	UnpackGradBoundaryInvalid:    "gradient boundary invalid",
	UnpackGradStartUnitOOB:       "gradient start unit out of bounds",
	UnpackGradEndUnitOOB:         "gradient end unit out of bounds",
	UnpackGradEndUnitInvalid:     "gradient end unit before start unit",
	UnpackGradStartValueOOB:      "gradient start value out of bounds",
	UnpackGradEndValueOOB:        "gradient end value out of bounds",
	UnpackScaleFactorModeInvalid: "scale factor coding mode invalid for this frame",
	UnpackScaleFactorOOB:         "decoded scale factor out of bounds",
	UnpackExtensionDataInvalid:   "band extension data invalid",
	UnpackSuperframeFlagInvalid:  "first-in-superframe flag invalid",
}

func (s Status) Error() string {
	if s < 0 || int(s) >= len(names) {
		return "atrac9: unknown status"
	}
	return "atrac9: " + names[s]
}

// OK reports whether s is Success.
func (s Status) OK() bool {
	return s == Success
}
