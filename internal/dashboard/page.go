package dashboard

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>RISC-V IoT Simulator</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js@3.7.1/dist/chart.min.js"></script>
    <style>
        body { font-family: sans-serif; text-align: center; }
        .container { width: 80%; margin: auto; }
        h1 { color: #800000; }
    </style>
</head>
<body>
<div class="container">
    <h1>Simulated temperature and humidity</h1>
    <canvas id="chart"></canvas>
    <div id="latest" style="margin-top: 20px; font-size: 1.2em;">Latest: -- °C, -- %</div>
</div>
<script>
    const MAX_POINTS = 20;
    const labels = [], temps = [], humis = [];

    const chart = new Chart(document.getElementById('chart').getContext('2d'), {
        type: 'line',
        data: {
            labels: labels,
            datasets: [
                {label: 'Temperature (°C)', data: temps, borderColor: 'rgb(255, 99, 132)', tension: 0.1, yAxisID: 'y'},
                {label: 'Humidity (%)', data: humis, borderColor: 'rgb(54, 162, 235)', tension: 0.1, yAxisID: 'y1'}
            ]
        },
        options: {
            responsive: true,
            interaction: {mode: 'index', intersect: false},
            scales: {
                y: {type: 'linear', position: 'left', title: {display: true, text: 'Temperature (°C)'}},
                y1: {type: 'linear', position: 'right', grid: {drawOnChartArea: false}, title: {display: true, text: 'Humidity (%)'}}
            }
        }
    });

    function update() {
        fetch('/api/data')
            .then(r => r.json())
            .then(d => {
                labels.push(new Date(d.timestamp * 1000).toLocaleTimeString());
                temps.push(d.temperature.toFixed(1));
                humis.push(d.humidity.toFixed(1));
                if (labels.length > MAX_POINTS) {
                    labels.shift(); temps.shift(); humis.shift();
                }
                chart.update();
                document.getElementById('latest').innerHTML =
                    'Latest: <b>' + d.temperature.toFixed(1) + '</b> °C, <b>' + d.humidity.toFixed(1) + '</b> %';
            })
            .catch(e => console.error('fetch failed:', e));
    }

    setInterval(update, 2000);
    update();
</script>
</body>
</html>
`
