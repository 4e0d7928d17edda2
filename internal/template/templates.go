package template

import (
	"flowkit/internal/flow"
	"flowkit/internal/nodeid"
)

func mqttFlow(ids nodeid.Source) *flow.Document {
	tabID := ids()
	return &flow.Document{Nodes: []*flow.Node{
		tab(tabID, "MQTT Flow", "MQTT publish and subscribe template"),
		node(
			m(flow.KeyID, ids()), m(flow.KeyType, "mqtt in"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Subscribe to Topic"),
			m("topic", "sensors/+/temperature"),
			m("qos", "2"),
			m("datatype", "json"),
			m("broker", ""),
			m(flow.KeyX, 130), m(flow.KeyY, 100),
			m(flow.KeyWires, to()),
		),
		node(
			m(flow.KeyID, ids()), m(flow.KeyType, "mqtt out"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Publish to Topic"),
			m("topic", "control/device/command"),
			m("qos", "2"),
			m("retain", false),
			m("broker", ""),
			m(flow.KeyX, 500), m(flow.KeyY, 200),
			m(flow.KeyWires, none),
		),
		node(
			m(flow.KeyID, ids()), m(flow.KeyType, "comment"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Configure MQTT Broker"),
			m("info", "Double-click the MQTT nodes to set up the broker connection"),
			m(flow.KeyX, 150), m(flow.KeyY, 40),
			m(flow.KeyWires, none),
		),
	}}
}

const httpHandlerCode = `// Request details
const query = msg.req.query;
const headers = msg.req.headers;

msg.payload = {
    status: 'success',
    timestamp: new Date().toISOString(),
    data: {}
};
msg.statusCode = 200;
msg.headers = { 'Content-Type': 'application/json' };

return msg;`

func httpAPIFlow(ids nodeid.Source) *flow.Document {
	tabID, inID, fnID, respID := ids(), ids(), ids(), ids()
	return &flow.Document{Nodes: []*flow.Node{
		tab(tabID, "REST API", "REST API endpoint template"),
		node(
			m(flow.KeyID, inID), m(flow.KeyType, "http in"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "API Endpoint"),
			m("url", "/api/v1/data"),
			m("method", "get"),
			m("upload", false),
			m("swaggerDoc", ""),
			m(flow.KeyX, 120), m(flow.KeyY, 100),
			m(flow.KeyWires, to(fnID)),
		),
		functionNode(fnID, tabID, "Process Request", httpHandlerCode, 300, 100, to(respID),
			m("libs", []string{})),
		node(
			m(flow.KeyID, respID), m(flow.KeyType, "http response"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Send Response"),
			m("statusCode", ""),
			m("headers", map[string]string{}),
			m(flow.KeyX, 500), m(flow.KeyY, 100),
			m(flow.KeyWires, none),
		),
	}}
}

const transformCode = `if (Array.isArray(msg.payload)) {
    msg.payload = msg.payload.map(value => ({
        value: value,
        timestamp: Date.now(),
        processed: true
    }));
}
return msg;`

const filterCode = `if (Array.isArray(msg.payload)) {
    msg.payload = msg.payload.filter(item => item.processed && item.value > 2);
}
return msg;`

func dataPipelineFlow(ids nodeid.Source) *flow.Document {
	tabID, injectID, transformID, filterID, outID := ids(), ids(), ids(), ids(), ids()
	return &flow.Document{Nodes: []*flow.Node{
		tab(tabID, "Data Pipeline", "Data processing pipeline template"),
		node(
			m(flow.KeyID, injectID), m(flow.KeyType, "inject"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Data Source"),
			m("props", []map[string]string{{"p": "payload"}, {"p": "topic", "vt": "str"}}),
			m("repeat", "60"),
			m("crontab", ""),
			m("once", false),
			m("onceDelay", 0.1),
			m("topic", "data"),
			m("payload", "[1,2,3,4,5]"),
			m("payloadType", "json"),
			m(flow.KeyX, 130), m(flow.KeyY, 100),
			m(flow.KeyWires, to(transformID)),
		),
		functionNode(transformID, tabID, "Transform Data", transformCode, 320, 100, to(filterID)),
		functionNode(filterID, tabID, "Filter Results", filterCode, 510, 100, to(outID)),
		node(
			m(flow.KeyID, outID), m(flow.KeyType, "debug"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Pipeline Output"),
			m("active", true),
			m("tosidebar", true),
			m("console", false),
			m("tostatus", false),
			m("complete", "payload"),
			m("targetType", "msg"),
			m("statusVal", ""),
			m("statusType", "auto"),
			m(flow.KeyX, 700), m(flow.KeyY, 100),
			m(flow.KeyWires, none),
		),
	}}
}

const tryCode = `try {
    if (Math.random() > 0.5) {
        throw new Error('Random failure occurred');
    }
    msg.payload = { status: 'success', result: 'Operation completed' };
    return msg;
} catch (err) {
    // Hands the message to the catch node.
    node.error(err.message, msg);
    return null;
}`

const recoverCode = `const details = {
    timestamp: new Date().toISOString(),
    error: msg.error.message,
    source: msg.error.source.name || msg.error.source.id,
    original_payload: msg.payload
};
node.warn('Error caught: ' + JSON.stringify(details));
msg.payload = { status: 'error', details: details };
return msg;`

func errorHandlerFlow(ids nodeid.Source) *flow.Document {
	tabID, injectID, tryID, catchID, logID := ids(), ids(), ids(), ids(), ids()
	return &flow.Document{Nodes: []*flow.Node{
		tab(tabID, "Error Handler", "Error handling pattern template"),
		node(
			m(flow.KeyID, injectID), m(flow.KeyType, "inject"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Trigger"),
			m("props", []map[string]string{{"p": "payload"}}),
			m("repeat", ""),
			m("crontab", ""),
			m("once", false),
			m("onceDelay", 0.1),
			m("topic", ""),
			m("payload", "test"),
			m("payloadType", "str"),
			m(flow.KeyX, 110), m(flow.KeyY, 100),
			m(flow.KeyWires, to(tryID)),
		),
		functionNode(tryID, tabID, "Try Operation", tryCode, 280, 100, to()),
		node(
			m(flow.KeyID, catchID), m(flow.KeyType, "catch"), m(flow.KeyZ, tabID),
			m(flow.KeyName, "Catch Errors"),
			m("scope", []string{tryID}),
			m("uncaught", false),
			m(flow.KeyX, 110), m(flow.KeyY, 200),
			m(flow.KeyWires, to(logID)),
		),
		functionNode(logID, tabID, "Log & Recover", recoverCode, 300, 200, to()),
	}}
}

// functionNode builds a single-output function node. extra members are
// appended before the coordinates.
func functionNode(id, tabID, name, code string, x, y int, wires [][]string, extra ...member) *flow.Node {
	members := []member{
		m(flow.KeyID, id), m(flow.KeyType, flow.TypeFunction), m(flow.KeyZ, tabID),
		m(flow.KeyName, name),
		m(flow.KeyFunc, code),
		m("outputs", 1),
		m("noerr", 0),
		m("initialize", ""),
		m("finalize", ""),
	}
	members = append(members, extra...)
	members = append(members, m(flow.KeyX, x), m(flow.KeyY, y), m(flow.KeyWires, wires))
	return node(members...)
}
